package storage

import "sort"

// LockOrder возвращает уникальные id счетов по возрастанию.
// Все бэкенды блокируют счета строго в этом порядке, иначе встречные переводы A->B и B->A
// могут взаимно заблокироваться.
func LockOrder(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
