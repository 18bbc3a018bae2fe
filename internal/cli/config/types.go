// Package config loads and validates the pipeline configuration from
// file, environment, and flags.
package config

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/retailsync/internal/retailer"
)

// StorageConfig locates the landing zone bucket and its areas.
type StorageConfig struct {
	Bucket            string `koanf:"bucket"`
	Region            string `koanf:"region"`
	UnprocessedPrefix string `koanf:"unprocessed_prefix"`
	ProcessedPrefix   string `koanf:"processed_prefix"`
	RawPrefix         string `koanf:"raw_prefix"`
}

// WarehouseConfig holds the Redshift connection and table names.
type WarehouseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Schema   string `koanf:"schema"`
	SSLMode  string `koanf:"sslmode"`
	IAMRole  string `koanf:"iam_role"`

	StagingSalesTable     string `koanf:"staging_sales_table"`
	StagingInventoryTable string `koanf:"staging_inventory_table"`
	FinalSalesTable       string `koanf:"final_sales_table"`
	FinalInventoryTable   string `koanf:"final_inventory_table"`

	DropRecreateStaging bool `koanf:"drop_recreate_staging"`
	DropRecreateFinal   bool `koanf:"drop_recreate_final"`
}

// MailConfig holds the inbox credentials, the search criteria applied
// within each retailer label, and the notification addresses.
type MailConfig struct {
	CredentialsFile string `koanf:"credentials_file"`
	TokenFile       string `koanf:"token_file"`
	SearchCriteria  string `koanf:"search_criteria"`
	NotifyErrors    bool   `koanf:"notify_errors"`
	NotifyFrom      string `koanf:"notify_from"`
	NotifyTo        string `koanf:"notify_to"`
	NotifyCc        string `koanf:"notify_cc"`
}

// RetailerConfig is one roster entry, keyed by registry tag in the
// config file.
type RetailerConfig struct {
	RetailerID     string            `koanf:"retailer_id"`
	InternalID     string            `koanf:"internal_id"`
	EmailLabel     string            `koanf:"email_label"`
	FileExtensions []string          `koanf:"file_extensions"`
	Enabled        bool              `koanf:"enabled"`
	Options        map[string]string `koanf:"options"`
}

// Config holds all pipeline configuration.
type Config struct {
	StatePath   string                    `koanf:"state_path"`
	DownloadDir string                    `koanf:"download_dir"`
	Verbose     bool                      `koanf:"verbose"`
	Storage     StorageConfig             `koanf:"storage"`
	Warehouse   WarehouseConfig           `koanf:"warehouse"`
	Mail        MailConfig                `koanf:"mail"`
	Retailers   map[string]RetailerConfig `koanf:"retailers"`
}

// Default configuration values.
const (
	DefaultStateFile         = ".retailsync/state.db"
	DefaultDownloadDir       = "_data"
	DefaultUnprocessedPrefix = "unprocessed"
	DefaultProcessedPrefix   = "processed"
	DefaultRawPrefix         = "raw"
)

// RetailerInfos converts the roster into registry-keyed reference data.
// Every key must name a registered retailer.
func (c *Config) RetailerInfos() (map[retailer.Tag]retailer.Info, error) {
	out := make(map[retailer.Tag]retailer.Info, len(c.Retailers))
	for name, rc := range c.Retailers {
		tag := retailer.Tag(name)
		if !retailer.Known(tag) {
			return nil, fmt.Errorf("unknown retailer %q in configuration", name)
		}
		out[tag] = retailer.Info{
			RetailerID:     rc.RetailerID,
			InternalID:     rc.InternalID,
			EmailLabel:     rc.EmailLabel,
			FileExtensions: rc.FileExtensions,
			Enabled:        rc.Enabled,
			Options:        rc.Options,
		}
	}
	return out, nil
}

// EnabledRetailers lists the enabled roster tags, sorted.
func (c *Config) EnabledRetailers() []string {
	var tags []string
	for name, rc := range c.Retailers {
		if rc.Enabled {
			tags = append(tags, name)
		}
	}
	sort.Strings(tags)
	return tags
}
