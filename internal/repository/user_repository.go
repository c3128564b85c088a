package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// User is a registered account with its running scan statistics.
type User struct {
	ID             uint      `gorm:"primaryKey"`
	Username       string    `gorm:"column:username;uniqueIndex;size:64"`
	Email          string    `gorm:"column:email;size:128"`
	PasswordHash   string    `gorm:"column:password_hash;type:text"`
	TotalScans     int       `gorm:"column:total_scans"`
	RecyclingScore int       `gorm:"column:recycling_score"`
	CO2Saved       float64   `gorm:"column:co2_saved"`
	Location       string    `gorm:"column:location;size:128"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (User) TableName() string {
	return "users"
}

// ScanRecord is one classified image in the user's history.
type ScanRecord struct {
	ID         uint      `gorm:"primaryKey"`
	RequestID  string    `gorm:"column:request_id;uniqueIndex;size:64"`
	UserID     uint      `gorm:"column:user_id;index"`
	WasteType  string    `gorm:"column:waste_type;size:64"`
	Confidence float64   `gorm:"column:confidence"`
	Latitude   *float64  `gorm:"column:latitude"`
	Longitude  *float64  `gorm:"column:longitude"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (ScanRecord) TableName() string {
	return "scan_history"
}

// Achievement is an award earned by reaching a scan milestone.
type Achievement struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"column:user_id;index"`
	Kind     string    `gorm:"column:achievement_type;size:64"`
	EarnedAt time.Time `gorm:"column:earned_at"`
}

// TableName overrides the default table name.
func (Achievement) TableName() string {
	return "achievements"
}

// WasteCount is one waste type's tally in the scan history.
type WasteCount struct {
	WasteType string
	Count     int
}

// Scan milestones that earn achievements.
var achievementMilestones = map[int]string{
	1:  "first_scan",
	10: "eco_warrior",
	50: "recycling_champion",
}

// UserRepository provides persistence for accounts and scan history.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// AutoMigrate ensures the schema is available.
func (r *UserRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&User{}, &ScanRecord{}, &Achievement{})
}

// CreateUser persists a new account.
func (r *UserRepository) CreateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByUsername retrieves an account by its unique username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves an account by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddScan records a classification, updates the user's running statistics,
// and awards any milestone achievements, all in one transaction.
func (r *UserRepository) AddScan(ctx context.Context, record *ScanRecord, co2Delta float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		scoreDelta := int(record.Confidence * 10)
		if err := tx.Model(&User{}).Where("id = ?", record.UserID).Updates(map[string]interface{}{
			"total_scans":     gorm.Expr("total_scans + 1"),
			"recycling_score": gorm.Expr("recycling_score + ?", scoreDelta),
			"co2_saved":       gorm.Expr("co2_saved + ?", co2Delta),
		}).Error; err != nil {
			return err
		}

		return r.awardMilestones(tx, record.UserID)
	})
}

func (r *UserRepository) awardMilestones(tx *gorm.DB, userID uint) error {
	var totalScans int
	if err := tx.Model(&User{}).Where("id = ?", userID).
		Select("total_scans").Scan(&totalScans).Error; err != nil {
		return err
	}

	kind, ok := achievementMilestones[totalScans]
	if !ok {
		return nil
	}

	var existing int64
	if err := tx.Model(&Achievement{}).
		Where("user_id = ? AND achievement_type = ?", userID, kind).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	return tx.Create(&Achievement{UserID: userID, Kind: kind, EarnedAt: time.Now().UTC()}).Error
}

// WasteBreakdown tallies the scan history by waste type.
func (r *UserRepository) WasteBreakdown(ctx context.Context, userID uint) ([]WasteCount, error) {
	var counts []WasteCount
	err := r.db.WithContext(ctx).Model(&ScanRecord{}).
		Select("waste_type, count(*) as count").
		Where("user_id = ?", userID).
		Group("waste_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// ScanHistory returns the user's scans, newest first.
func (r *UserRepository) ScanHistory(ctx context.Context, userID uint) ([]ScanRecord, error) {
	var records []ScanRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Achievements returns the user's achievements, newest first.
func (r *UserRepository) Achievements(ctx context.Context, userID uint) ([]Achievement, error) {
	var achievements []Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}
