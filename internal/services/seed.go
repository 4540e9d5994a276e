package services

import (
	"math"
	"math/rand/v2"
	"time"

	"moneytracker/internal/core"
)

var (
	seedIncomeCategories  = []string{"Salary", "Freelance", "Investments"}
	seedExpenseCategories = []string{"Groceries", "Rent", "Transport", "Dining", "Entertainment", "Bills"}
)

// seedDays is the number of synthetic days; five consecutive days share a
// month, so the data spans the last twelve months.
const seedDays = 60

// GenerateSeed builds the demo dataset: one expense per synthetic day and an
// income on every third day, dated backwards from now's month. That is 60
// expenses and 20 incomes, 80 records in all.
func GenerateSeed(now time.Time, r *rand.Rand, newID func() string) []core.Transaction {
	items := make([]core.Transaction, 0, seedDays+seedDays/3)
	y, m, _ := now.Date()
	for i := 0; i < seedDays; i++ {
		date := core.DateOf(time.Date(y, m-time.Month(i/5), 1+i%28, 0, 0, 0, 0, now.Location()))
		if i%3 == 0 {
			items = append(items, core.Transaction{
				ID:       newID(),
				Type:     core.Income,
				Amount:   core.MoneyFromInt(int64(math.Round(500 + r.Float64()*2000))),
				Category: seedIncomeCategories[r.IntN(len(seedIncomeCategories))],
				Date:     date,
			})
		}
		items = append(items, core.Transaction{
			ID:       newID(),
			Type:     core.Expense,
			Amount:   core.MoneyFromInt(int64(math.Round(10 + r.Float64()*300))),
			Category: seedExpenseCategories[r.IntN(len(seedExpenseCategories))],
			Date:     date,
		})
	}
	return items
}
