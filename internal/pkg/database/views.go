package database

import (
	"fmt"

	"gorm.io/gorm"
)

// PartnerPerformanceView rolls submissions up per partner. The definition
// matches migrations/000001_init_schema.up.sql.
const PartnerPerformanceView = "partner_performance"

const partnerPerformanceQuery = `SELECT
    cp.id AS partner_id,
    cp.company_name AS company_name,
    cp.referral_code AS referral_code,
    COUNT(s.id) AS total_referrals,
    COALESCE(SUM(CASE WHEN s.status = 'converted' THEN 1 ELSE 0 END), 0) AS total_conversions,
    COALESCE(SUM(CASE WHEN s.status = 'converted' THEN COALESCE(s.conversion_value, 0) ELSE 0 END), 0) AS total_revenue
FROM channel_partners cp
JOIN submissions s ON s.partner_id = cp.id
GROUP BY cp.id, cp.company_name, cp.referral_code`

// CreateViews recreates the reporting views. AutoMigrate only manages tables.
func CreateViews(db *gorm.DB) error {
	if err := db.Exec("DROP VIEW IF EXISTS " + PartnerPerformanceView).Error; err != nil {
		return fmt.Errorf("drop view %s: %w", PartnerPerformanceView, err)
	}
	if err := db.Exec("CREATE VIEW " + PartnerPerformanceView + " AS " + partnerPerformanceQuery).Error; err != nil {
		return fmt.Errorf("create view %s: %w", PartnerPerformanceView, err)
	}
	return nil
}
