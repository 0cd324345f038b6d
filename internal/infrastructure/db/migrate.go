package db

import (
	"fmt"

	"debt-ledger/internal/domain/investment"
	"debt-ledger/internal/domain/loan"
	"debt-ledger/internal/domain/wallet"

	"gorm.io/gorm"
)

// Migrate creates or updates the ledger tables. MySQL gets the domain
// models (with ENUM columns); SQLite gets the text-typed equivalents.
func Migrate(gdb *gorm.DB) error {
	models := []any{
		&loan.Loan{},
		&investment.Investment{},
		&investment.Payment{},
		&wallet.Wallet{},
		&wallet.Transaction{},
	}
	if gdb.Dialector.Name() == "sqlite" {
		models = SQLiteModels()
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
