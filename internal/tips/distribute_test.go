package tips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumCents(shares []Share) int64 {
	var sum int64
	for _, s := range shares {
		sum += s.AmountCents
	}
	return sum
}

func TestDistributeEvenSplit(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 1, Weight: 1},
		{EmployeeID: 2, Weight: 1},
		{EmployeeID: 3, Weight: 1},
	}

	// 100.00 TL / 3 kişi: 33.34 + 33.33 + 33.33
	shares, err := Distribute(100, parts)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	assert.Equal(t, int64(10000), sumCents(shares))
	assert.Equal(t, int64(3334), shares[0].AmountCents) // artık kuruş en küçük id'ye
	assert.Equal(t, int64(3333), shares[1].AmountCents)
	assert.Equal(t, int64(3333), shares[2].AmountCents)
}

func TestDistributeByHours(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 1, Weight: 40},
		{EmployeeID: 2, Weight: 32.5},
		{EmployeeID: 3, Weight: 12},
	}

	shares, err := Distribute(1250.75, parts)
	require.NoError(t, err)

	// Toplam her zaman kuruşu kuruşuna tutar
	assert.Equal(t, int64(125075), sumCents(shares))

	// Ağırlık sırası korunur: daha çok çalışan daha çok alır
	assert.Greater(t, shares[0].AmountCents, shares[1].AmountCents)
	assert.Greater(t, shares[1].AmountCents, shares[2].AmountCents)
}

func TestDistributeZeroWeightExcluded(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 1, Weight: 10},
		{EmployeeID: 2, Weight: 0},
		{EmployeeID: 3, Weight: 10},
	}

	shares, err := Distribute(0.03, parts)
	require.NoError(t, err)

	// Sıfır ağırlık pay da artık kuruş da almaz
	assert.Equal(t, int64(0), shares[1].AmountCents)
	assert.Equal(t, int64(3), sumCents(shares))
	assert.Equal(t, int64(2), shares[0].AmountCents) // eşit kesirde küçük id önce
	assert.Equal(t, int64(1), shares[2].AmountCents)
}

func TestDistributeRemainderByLargestFraction(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 5, Weight: 1},
		{EmployeeID: 6, Weight: 3},
	}

	// kesirler 0.25 / 0.75: artık kuruş büyük kesire gider
	shares, err := DistributeCents(1, parts)
	require.NoError(t, err)
	assert.Equal(t, int64(0), shares[0].AmountCents)
	assert.Equal(t, int64(1), shares[1].AmountCents)
}

func TestDistributeRemainderTieBreakByWeight(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 5, Weight: 1},
		{EmployeeID: 6, Weight: 3},
	}

	// 2 kuruş: kesirler 0.5 / 0.5 eşit, büyük ağırlık (6) kazanır
	shares, err := DistributeCents(2, parts)
	require.NoError(t, err)
	assert.Equal(t, int64(0), shares[0].AmountCents)
	assert.Equal(t, int64(2), shares[1].AmountCents)
}

func TestDistributeDeterministic(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 1, Weight: 7.25},
		{EmployeeID: 2, Weight: 8},
		{EmployeeID: 3, Weight: 6.5},
		{EmployeeID: 4, Weight: 8},
	}

	first, err := Distribute(999.99, parts)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Distribute(999.99, parts)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDistributeZeroTotal(t *testing.T) {
	parts := []Participant{
		{EmployeeID: 1, Weight: 5},
		{EmployeeID: 2, Weight: 3},
	}

	shares, err := Distribute(0, parts)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sumCents(shares))
}

func TestDistributeErrors(t *testing.T) {
	_, err := Distribute(-10, []Participant{{EmployeeID: 1, Weight: 1}})
	assert.ErrorIs(t, err, ErrNegativeTotal)

	_, err = Distribute(100, nil)
	assert.ErrorIs(t, err, ErrNoParticipants)

	_, err = Distribute(100, []Participant{{EmployeeID: 1, Weight: 0}})
	assert.ErrorIs(t, err, ErrNoWeight)

	// Tutar 0 ise ağırlıksız katılımcılar hata değildir
	shares, err := Distribute(0, []Participant{{EmployeeID: 1, Weight: 0}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), shares[0].AmountCents)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(10000), ToCents(100))
	assert.Equal(t, int64(125075), ToCents(1250.75))
	assert.Equal(t, int64(3), ToCents(0.03))
	// float temsili bozuk değerler de doğru kuruşa gelir
	assert.Equal(t, int64(1010), ToCents(10.1))
}

func TestShareAmountTL(t *testing.T) {
	s := Share{AmountCents: 3334}
	assert.InDelta(t, 33.34, s.AmountTL(), 0.0001)
}
