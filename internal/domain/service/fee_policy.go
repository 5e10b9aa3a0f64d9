package service

import (
	"fmt"
	"math"
)

const basisPointDenominator = 10000

// MaxQuotePrice is the largest total a quote may carry.
const MaxQuotePrice = math.MaxInt64 / basisPointDenominator

// FeePolicy computes the platform fee charged to a supplier when a deal is
// confirmed. The rate is held in basis points so every amount stays integral.
type FeePolicy struct {
	rateBasisPoints int64
}

func NewFeePolicy(rateBasisPoints int64) (*FeePolicy, error) {
	if rateBasisPoints < 0 || rateBasisPoints > basisPointDenominator {
		return nil, fmt.Errorf("fee rate %d bp out of range", rateBasisPoints)
	}
	return &FeePolicy{rateBasisPoints: rateBasisPoints}, nil
}

func (p *FeePolicy) RateBasisPoints() int64 {
	return p.rateBasisPoints
}

// FeeFor returns round_half_up(totalPrice * rate).
func (p *FeePolicy) FeeFor(totalPrice int64) int64 {
	if totalPrice <= 0 || p.rateBasisPoints == 0 {
		return 0
	}
	// Split the total so neither product can exceed int64 for any rate up to 100%.
	whole := totalPrice / basisPointDenominator * p.rateBasisPoints
	rest := (totalPrice%basisPointDenominator*p.rateBasisPoints + basisPointDenominator/2) / basisPointDenominator
	return whole + rest
}
