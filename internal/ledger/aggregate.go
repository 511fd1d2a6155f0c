package ledger

import (
	"sort"
	"time"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals is the all-time transaction summary for one user.
type Totals struct {
	TotalTransactions int64           // Count of all transactions
	TotalIncome       decimal.Decimal // Sum of income amounts
	TotalExpense      decimal.Decimal // Sum of expense amounts
	Balance           decimal.Decimal // Income minus expense
}

// MonthlyBucket is one calendar month of activity.
type MonthlyBucket struct {
	Month   string          `json:"month"`   // YYYY-MM
	Income  decimal.Decimal `json:"income"`  // Income sum for the month
	Expense decimal.Decimal `json:"expense"` // Expense sum for the month
	Balance decimal.Decimal `json:"balance"` // Income minus expense
}

// CategoryTotal is one category's aggregate over its transactions.
type CategoryTotal struct {
	CategoryID       uint            `json:"id" gorm:"column:category_id"`
	Name             string          `json:"name" gorm:"column:name"`
	Type             string          `json:"type" gorm:"column:type"`
	Color            string          `json:"color" gorm:"column:color"`
	Icon             *string         `json:"icon" gorm:"column:icon"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"column:total_amount"`
	TransactionCount int64           `json:"transaction_count" gorm:"column:transaction_count"`
}

// RecentTransaction is a transaction joined with its category display
// fields; category fields are nil for uncategorized transactions.
type RecentTransaction struct {
	ID              uint            `gorm:"column:id"`
	Amount          decimal.Decimal `gorm:"column:amount"`
	Type            string          `gorm:"column:type"`
	Description     *string         `gorm:"column:description"`
	TransactionDate time.Time       `gorm:"column:transaction_date"`
	CategoryName    *string         `gorm:"column:category_name"`
	CategoryColor   *string         `gorm:"column:category_color"`
	CategoryIcon    *string         `gorm:"column:category_icon"`
}

// SummaryTotals returns count, income, expense and balance for all of the
// user's transactions. Zero values when no transactions exist.
func SummaryTotals(db *gorm.DB, userID uint) (Totals, error) {
	var row struct {
		TotalTransactions int64
		TotalIncome       decimal.Decimal
		TotalExpense      decimal.Decimal
	}
	err := db.Model(&domain.Transaction{}).
		Select("COUNT(*) AS total_transactions, " +
			"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income, " +
			"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		TotalTransactions: row.TotalTransactions,
		TotalIncome:       row.TotalIncome,
		TotalExpense:      row.TotalExpense,
		Balance:           row.TotalIncome.Sub(row.TotalExpense),
	}, nil
}

// MonthlyTrend groups the trailing windowMonths of transactions (current
// month included) by calendar month, ascending. Months with no activity are
// omitted rather than zero-filled; chart consumers wanting a fixed-length
// series fill the gaps themselves.
func MonthlyTrend(db *gorm.DB, userID uint, windowMonths int, now time.Time) ([]MonthlyBucket, error) {
	// First day of the oldest month in the window
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := monthStart.AddDate(0, -(windowMonths - 1), 0)

	var transactions []domain.Transaction
	err := db.Select("type", "amount", "transaction_date").
		Where("user_id = ? AND transaction_date >= ?", userID, windowStart).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	// Bucket by YYYY-MM; month arithmetic is portable across stores this way
	byMonth := make(map[string]*MonthlyBucket)
	for i := range transactions {
		key := transactions[i].TransactionDate.Format("2006-01")
		bucket, ok := byMonth[key]
		if !ok {
			bucket = &MonthlyBucket{Month: key}
			byMonth[key] = bucket
		}
		if transactions[i].Type == domain.TypeIncome {
			bucket.Income = bucket.Income.Add(transactions[i].Amount)
		} else {
			bucket.Expense = bucket.Expense.Add(transactions[i].Amount)
		}
	}

	months := make([]string, 0, len(byMonth))
	for key := range byMonth {
		months = append(months, key)
	}
	sort.Strings(months)

	buckets := make([]MonthlyBucket, 0, len(months))
	for _, key := range months {
		bucket := byMonth[key]
		bucket.Balance = bucket.Income.Sub(bucket.Expense)
		buckets = append(buckets, *bucket)
	}
	return buckets, nil
}

// CategoryBreakdown ranks categories by total transaction amount,
// descending, truncated to limit. Categories whose transactions sum to zero
// are excluded.
func CategoryBreakdown(db *gorm.DB, userID uint, limit int) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := db.Table("categories c").
		Select("c.id AS category_id, c.name, c.type, c.color, c.icon, "+
			"COALESCE(SUM(t.amount), 0) AS total_amount, COUNT(t.id) AS transaction_count").
		Joins("LEFT JOIN transactions t ON t.category_id = c.id AND t.user_id = ?", userID).
		Where("c.user_id = ?", userID).
		Group("c.id, c.name, c.type, c.color, c.icon").
		Having("SUM(t.amount) > 0").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CategoryStats returns every category with its transaction count and total,
// descending by total. Unlike CategoryBreakdown there is no sum filter and
// no limit: categories with zero transactions appear too. Used by category
// management views; keep the two queries distinct.
func CategoryStats(db *gorm.DB, userID uint) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := db.Table("categories c").
		Select("c.id AS category_id, c.name, c.type, c.color, c.icon, " +
			"COALESCE(SUM(t.amount), 0) AS total_amount, COUNT(t.id) AS transaction_count").
		Joins("LEFT JOIN transactions t ON t.category_id = c.id").
		Where("c.user_id = ?", userID).
		Group("c.id, c.name, c.type, c.color, c.icon").
		Order("total_amount DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentTransactions returns the user's latest transactions by
// (date desc, creation time desc), joined with category display fields.
func RecentTransactions(db *gorm.DB, userID uint, limit int) ([]RecentTransaction, error) {
	var rows []RecentTransaction
	err := db.Table("transactions t").
		Select("t.id, t.amount, t.type, t.description, t.transaction_date, "+
			"c.name AS category_name, c.color AS category_color, c.icon AS category_icon").
		Joins("LEFT JOIN categories c ON c.id = t.category_id").
		Where("t.user_id = ?", userID).
		Order("t.transaction_date DESC, t.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
