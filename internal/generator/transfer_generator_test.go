package generator

import (
	"testing"

	"bank-settlement-engine/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransfer_DistinctAccounts(t *testing.T) {
	g := NewTransferGeneratorWithSeed(1)
	accounts := []int64{1, 2, 3}

	for i := 0; i < 200; i++ {
		req := g.GenerateTransfer(accounts, ProfileSmall, money.MustParse("1000"))
		require.NotNil(t, req)
		assert.NotEqual(t, req.SrcAccount, req.DestAccount)
		assert.Contains(t, accounts, req.SrcAccount)
		assert.Contains(t, accounts, req.DestAccount)
	}
}

func TestGenerateTransfer_Profiles(t *testing.T) {
	g := NewTransferGeneratorWithSeed(2)
	accounts := []int64{1, 2}
	initial := money.MustParse("1000.00")

	for i := 0; i < 100; i++ {
		small, err := money.FromDecimal(g.GenerateTransfer(accounts, ProfileSmall, initial).Amount)
		require.NoError(t, err)
		assert.True(t, small > 0 && small <= money.MustParse("50.00"))

		large, err := money.FromDecimal(g.GenerateTransfer(accounts, ProfileLarge, initial).Amount)
		require.NoError(t, err)
		assert.True(t, large >= money.MustParse("1000.00") && large <= money.MustParse("5000.00"))

		over, err := money.FromDecimal(g.GenerateTransfer(accounts, ProfileOverdraft, initial).Amount)
		require.NoError(t, err)
		assert.Greater(t, int64(over), int64(initial))
	}
}

func TestGenerateTransfer_SingleAccount(t *testing.T) {
	g := NewTransferGenerator()
	assert.Nil(t, g.GenerateTransfer([]int64{1}, ProfileSmall, 0))
}

func TestGenerateBatch(t *testing.T) {
	g := NewTransferGeneratorWithSeed(3)
	batch := g.GenerateBatch([]int64{1, 2, 3, 4}, 50, 0.2, money.MustParse("100"))
	assert.Len(t, batch, 50)
}

func TestGenerateBatch_Reproducible(t *testing.T) {
	a := NewTransferGeneratorWithSeed(42).GenerateBatch([]int64{1, 2, 3}, 10, 0.1, 10000)
	b := NewTransferGeneratorWithSeed(42).GenerateBatch([]int64{1, 2, 3}, 10, 0.1, 10000)
	require.Len(t, a, 10)
	for i := range a {
		assert.Equal(t, a[i].SrcAccount, b[i].SrcAccount)
		assert.True(t, a[i].Amount.Equal(b[i].Amount))
	}
}
