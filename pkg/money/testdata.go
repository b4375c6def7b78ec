package money

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic statement test data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// ============================================================================
// Money Generation
// ============================================================================

// RandomAmount generates a random Money value within a cent range.
func (g *TestDataGenerator) RandomAmount(currency string, minCents, maxCents int64) *Money {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	cents := g.faker.Int64() % (maxCents - minCents + 1)
	if cents < 0 {
		cents = -cents
	}
	return New(minCents+cents, currency)
}

// StatementAmount returns a positive amount printed the way a US statement
// prints it ("1,234.56"), together with its decimal value.
func (g *TestDataGenerator) StatementAmount() (string, decimal.Decimal) {
	m := g.RandomAmount(USD, 1, 2_500_000) // $0.01 to $25,000.00
	d := m.ToDecimal()
	return FormatUS(d), d
}

// ============================================================================
// Statement Token Generation
// ============================================================================

// CheckNumber returns a 3 or 4 digit check number.
func (g *TestDataGenerator) CheckNumber() string {
	if g.faker.Bool() {
		return fmt.Sprintf("%d", g.faker.Number(100, 999))
	}
	return fmt.Sprintf("%d", g.faker.Number(1000, 9999))
}

// DateFragment returns a zero-padded "MM/DD" pair.
func (g *TestDataGenerator) DateFragment() string {
	return fmt.Sprintf("%02d/%02d", g.faker.Number(1, 12), g.faker.Number(1, 28))
}

// NoiseWord returns a statement word that can never be part of a check triplet.
func (g *TestDataGenerator) NoiseWord() string {
	words := []string{
		"Checks", "Paid", "Deposits", "Balance", "Withdrawals", "Account",
		"Summary", "Statement", "Period", "Fifth", "Third", "Bank",
		g.faker.FirstName(), g.faker.LastName(),
	}
	return words[g.faker.Number(0, len(words)-1)]
}

// FormatUS prints an unsigned amount with thousands separators and two
// fractional digits, e.g. 1234.5 -> "1,234.50".
func FormatUS(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(CentPlaces)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	var grouped []byte
	for i := range len(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, intPart[i])
	}
	return string(grouped) + frac
}
