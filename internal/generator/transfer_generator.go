package generator

import (
	"math/rand"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
)

// Профили генерируемых переводов
const (
	ProfileSmall     = "small"     // до 50.00
	ProfileLarge     = "large"     // 1000.00 - 5000.00
	ProfileOverdraft = "overdraft" // заведомо больше начального баланса
)

type TransferGenerator struct {
	rand *rand.Rand
}

func NewTransferGenerator() *TransferGenerator {
	return NewTransferGeneratorWithSeed(time.Now().UnixNano())
}

// NewTransferGeneratorWithSeed дает воспроизводимую последовательность
func NewTransferGeneratorWithSeed(seed int64) *TransferGenerator {
	return &TransferGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateTransfer выбирает два разных счета из пула и сумму по профилю.
// Для пула из одного счета возвращает nil.
func (g *TransferGenerator) GenerateTransfer(accounts []int64, profile string, initialBalance money.Amount) *models.TransferRequest {
	if len(accounts) < 2 {
		return nil
	}

	srcIdx := g.rand.Intn(len(accounts))
	destIdx := g.rand.Intn(len(accounts) - 1)
	if destIdx >= srcIdx {
		destIdx++
	}

	var amount money.Amount
	switch profile {
	case ProfileLarge:
		amount = g.between(100000, 500000)
	case ProfileOverdraft:
		amount = initialBalance + g.between(1, 100000)
	default:
		amount = g.between(1, 5000)
	}

	return &models.TransferRequest{
		SrcAccount:  accounts[srcIdx],
		DestAccount: accounts[destIdx],
		Amount:      amount.Decimal(),
	}
}

// GenerateBatch генерирует n переводов; overdraftShare - доля переводов сверх баланса
func (g *TransferGenerator) GenerateBatch(accounts []int64, n int, overdraftShare float64, initialBalance money.Amount) []*models.TransferRequest {
	batch := make([]*models.TransferRequest, 0, n)
	for i := 0; i < n; i++ {
		profile := ProfileSmall
		switch r := g.rand.Float64(); {
		case r < overdraftShare:
			profile = ProfileOverdraft
		case r < overdraftShare+0.1:
			profile = ProfileLarge
		}

		if req := g.GenerateTransfer(accounts, profile, initialBalance); req != nil {
			batch = append(batch, req)
		}
	}
	return batch
}

// between возвращает сумму в копейках из [min, max]
func (g *TransferGenerator) between(min, max int64) money.Amount {
	return money.Amount(min + g.rand.Int63n(max-min+1))
}
