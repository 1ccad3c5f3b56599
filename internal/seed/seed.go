// Package seed installs the standard fee-type catalog.
package seed

import (
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	"gorm.io/gorm"
)

// Catalog is the standard fee bundle. IDs and positions are stable: fee
// applications join on the ID and report layout follows the position.
var Catalog = []feetypedomain.FeeType{
	{ID: 1, Key: string(feetypedomain.FeeKeyMDR), Name: "MDR Fee", IsPercentage: true, Frequency: feetypedomain.FrequencyTransaction, Position: 1},
	{ID: 2, Key: string(feetypedomain.FeeKeyTransaction), Name: "Transaction Fee", Frequency: feetypedomain.FrequencyTransaction, Position: 2},
	{ID: 3, Key: string(feetypedomain.FeeKeyPayout), Name: "Payout Fee", Frequency: feetypedomain.FrequencyWeekly, Position: 3},
	{ID: 4, Key: string(feetypedomain.FeeKeyRefund), Name: "Refund Fee", Frequency: feetypedomain.FrequencyTransaction, Position: 4},
	{ID: 5, Key: string(feetypedomain.FeeKeyDeclined), Name: "Declined Fee", Frequency: feetypedomain.FrequencyTransaction, Position: 5},
	{ID: 6, Key: string(feetypedomain.FeeKeyChargeback), Name: "Chargeback Fee", Frequency: feetypedomain.FrequencyTransaction, Position: 6},
	{ID: 7, Key: string(feetypedomain.FeeKeyMonthly), Name: "Monthly Fee", Frequency: feetypedomain.FrequencyMonthly, Position: 7},
	{ID: 8, Key: string(feetypedomain.FeeKeyMastercardHighRisk), Name: "Mastercard High Risk Fee", Frequency: feetypedomain.FrequencyMonthly, Position: 8},
	{ID: 9, Key: string(feetypedomain.FeeKeyVisaHighRisk), Name: "Visa High Risk Fee", Frequency: feetypedomain.FrequencyMonthly, Position: 9},
	{ID: 10, Key: string(feetypedomain.FeeKeySetup), Name: "Setup Fee", Frequency: feetypedomain.FrequencyOneTime, Position: 10},
}

// EnsureFeeCatalog inserts any missing standard fee types. Existing rows are
// left untouched so operator edits to display names survive restarts.
func EnsureFeeCatalog(conn *gorm.DB) error {
	for _, feeType := range Catalog {
		var count int64
		if err := conn.Model(&feetypedomain.FeeType{}).
			Where("id = ?", feeType.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := conn.Create(&feeType).Error; err != nil {
			return err
		}
	}
	return nil
}
