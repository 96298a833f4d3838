// Package domain defines the persistence models for vehicles, contact
// messages, visitors, site configuration, media assets, and the activity
// audit trail. These types are mapped with GORM and form the core data layer
// of the export-site backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Fuel type values accepted for Vehicle.FuelType. The site targets a
// francophone market, so the labels are kept in French end to end.
const (
	FuelEssence    = "essence"
	FuelDiesel     = "diesel"
	FuelHybride    = "hybride"
	FuelElectrique = "electrique"
	FuelGPL        = "gpl"
)

// Transmission values accepted for Vehicle.Transmission.
const (
	TransmissionManual    = "manuelle"
	TransmissionAutomatic = "automatique"
	TransmissionSemiAuto  = "semi-automatique"
)

// Vehicle status values.
const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusSold      = "sold"
)

// MinVehicleYear is the oldest model year accepted for a listing.
const MinVehicleYear = 1900

// Vehicle represents a car listed for export. Listings are publicly readable
// and mutated only through admin-authenticated calls.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Title: display headline for the listing.
//   - Make / Model / Year: identification of the car.
//   - Price: asking price; must be >= 0.
//   - Mileage: odometer reading in km; must be >= 0.
//   - FuelType / Transmission / Status: constrained enums (DB check + service
//     validation).
//   - Images: ordered list of stored image references, serialized as JSON.
//   - IsFeatured: flags listings surfaced on the home page.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Vehicle struct {
	ID           string         `json:"id"           gorm:"type:char(36);primaryKey"`
	Title        string         `json:"title"        gorm:"type:varchar(255);not null"`
	Make         string         `json:"make"         gorm:"type:varchar(64);not null;index"`
	Model        string         `json:"model"        gorm:"type:varchar(64);not null"`
	Year         int            `json:"year"         gorm:"not null"`
	Price        float64        `json:"price"        gorm:"not null;check:price >= 0"`
	Mileage      int            `json:"mileage"      gorm:"not null;check:mileage >= 0"`
	FuelType     string         `json:"fuelType"     gorm:"type:varchar(16);not null;check:fuel_type IN ('essence','diesel','hybride','electrique','gpl')"`
	Transmission string         `json:"transmission" gorm:"type:varchar(20);not null;check:transmission IN ('manuelle','automatique','semi-automatique')"`
	Description  string         `json:"description"  gorm:"type:text"`
	Features     string         `json:"features"     gorm:"type:text"`
	IsFeatured   bool           `json:"isFeatured"   gorm:"not null;default:false;index"`
	Status       string         `json:"status"       gorm:"type:varchar(16);not null;default:'available';check:status IN ('available','reserved','sold')"`
	Images       []string       `json:"images"       gorm:"serializer:json"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Vehicle.
func (Vehicle) TableName() string { return "vehicles" }

// ContactMessage represents a contact form submission from an anonymous
// visitor. Only the Responded flag is ever mutated after creation, and only
// by an admin.
type ContactMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(128);not null"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;index"`
	Phone     *string   `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	Responded bool      `json:"responded"  gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for ContactMessage.
func (ContactMessage) TableName() string { return "contact_messages" }

// Visitor is an append-only record of a single page view. Rows are never
// updated and are read only in aggregate by the admin stats endpoint.
type Visitor struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	IP        string    `json:"ip"         gorm:"type:varchar(64)"`
	UserAgent string    `json:"userAgent"  gorm:"type:varchar(512)"`
	Page      string    `json:"page"       gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time `json:"timestamp"  gorm:"index"`
}

// TableName returns the database table name for Visitor.
func (Visitor) TableName() string { return "visitors" }

// SiteConfigID is the fixed primary key of the singleton SiteConfig row.
// The row is created lazily by an upsert on first read, so exactly one
// instance can exist even under concurrent first access.
const SiteConfigID = 1

// ContactInfo groups the site's public contact details. Embedded into
// SiteConfig with a column prefix.
type ContactInfo struct {
	Address      string `json:"address"      gorm:"type:varchar(255)"`
	Phone        string `json:"phone"        gorm:"type:varchar(32)"`
	Email        string `json:"email"        gorm:"type:varchar(255)"`
	WorkingHours string `json:"workingHours" gorm:"type:varchar(128)"`
}

// SocialMedia groups the site's social profile URLs. Embedded into
// SiteConfig with a column prefix.
type SocialMedia struct {
	Facebook  string `json:"facebook"  gorm:"type:varchar(255)"`
	Instagram string `json:"instagram" gorm:"type:varchar(255)"`
	Twitter   string `json:"twitter"   gorm:"type:varchar(255)"`
}

// SiteConfig is the singleton site configuration record (id = SiteConfigID).
type SiteConfig struct {
	ID           int         `json:"-"            gorm:"primaryKey"`
	VideoURL     string      `json:"videoUrl"     gorm:"type:varchar(512)"`
	HomeHeroText string      `json:"homeHeroText" gorm:"type:text"`
	ContactInfo  ContactInfo `json:"contactInfo"  gorm:"embedded;embeddedPrefix:contact_"`
	SocialMedia  SocialMedia `json:"socialMedia"  gorm:"embedded;embeddedPrefix:social_"`
	LastUpdated  time.Time   `json:"lastUpdated"`
}

// TableName returns the database table name for SiteConfig.
func (SiteConfig) TableName() string { return "site_config" }

// Storage provider identifiers recorded on MediaAsset.
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
)

// MediaAsset records one stored file (image or video). Created on upload,
// deleted on explicit admin action, otherwise immutable.
type MediaAsset struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	Filename  string    `json:"filename"  gorm:"type:varchar(255);not null"`
	URL       string    `json:"url"       gorm:"type:varchar(512);not null"`
	Type      string    `json:"type"      gorm:"type:varchar(16);not null"`
	Size      int64     `json:"size"      gorm:"not null"`
	Provider  string    `json:"provider"  gorm:"type:varchar(16);not null;default:'local';check:provider IN ('local','remote')"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for MediaAsset.
func (MediaAsset) TableName() string { return "media_assets" }

// Activity log entry types.
const (
	ActivityAdmin   = "admin"
	ActivityVehicle = "vehicle"
	ActivityMessage = "message"
	ActivityVisitor = "visitor"
)

// ActivityLog is an append-only audit entry written as a side effect of admin
// mutations. Appends are fire-and-forget: a failed write never fails the
// primary operation.
type ActivityLog struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	Type      string    `json:"type"      gorm:"type:varchar(16);not null;index;check:type IN ('admin','vehicle','message','visitor')"`
	Action    string    `json:"action"    gorm:"type:varchar(64);not null"`
	Details   string    `json:"details"   gorm:"type:text"`
	User      *string   `json:"user,omitempty" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"timestamp" gorm:"index"`
}

// TableName returns the database table name for ActivityLog.
func (ActivityLog) TableName() string { return "activity_log" }
