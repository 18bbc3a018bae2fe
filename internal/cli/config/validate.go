package config

import (
	"fmt"

	"github.com/leapstack-labs/retailsync/internal/retailer"
)

// Validate checks structural correctness: unknown retailer tags and
// incomplete roster entries are configuration errors regardless of
// which phase runs. Connection settings are validated by the phase
// that needs them.
func (c *Config) Validate() error {
	for name, rc := range c.Retailers {
		if !retailer.Known(retailer.Tag(name)) {
			return fmt.Errorf("unknown retailer %q in configuration", name)
		}
		if !rc.Enabled {
			continue
		}
		if rc.RetailerID == "" {
			return fmt.Errorf("retailer %q: retailer_id is required", name)
		}
		if rc.EmailLabel == "" {
			return fmt.Errorf("retailer %q: email_label is required", name)
		}
	}
	return nil
}

// ValidateStorage checks the settings the landing zone needs.
func (c *Config) ValidateStorage() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.Region == "" {
		return fmt.Errorf("storage.region is required")
	}
	return nil
}

// ValidateWarehouse checks the settings the warehouse phases need.
func (c *Config) ValidateWarehouse() error {
	if c.Warehouse.Host == "" {
		return fmt.Errorf("warehouse.host is required")
	}
	if c.Warehouse.Database == "" {
		return fmt.Errorf("warehouse.database is required")
	}
	for key, table := range map[string]string{
		"warehouse.staging_sales_table":     c.Warehouse.StagingSalesTable,
		"warehouse.staging_inventory_table": c.Warehouse.StagingInventoryTable,
		"warehouse.final_sales_table":       c.Warehouse.FinalSalesTable,
		"warehouse.final_inventory_table":   c.Warehouse.FinalInventoryTable,
	} {
		if table == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}

// ValidateMail checks the settings the extraction phase needs.
func (c *Config) ValidateMail() error {
	if c.Mail.CredentialsFile == "" {
		return fmt.Errorf("mail.credentials_file is required")
	}
	if c.Mail.TokenFile == "" {
		return fmt.Errorf("mail.token_file is required")
	}
	return nil
}
