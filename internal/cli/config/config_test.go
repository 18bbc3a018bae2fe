package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/retailsync/internal/retailer"
)

const testYAML = `
state_path: /var/lib/retailsync/state.db
download_dir: /tmp/reports
storage:
  bucket: retail-data
  region: us-east-1
warehouse:
  host: warehouse.example.com
  database: retail
  user: loader
  staging_sales_table: retail.stg_sales
  staging_inventory_table: retail.stg_inventory
  final_sales_table: retail.sales
  final_inventory_table: retail.inventory
mail:
  credentials_file: credentials.json
  token_file: token.json
  notify_to: ops@brand.example.com
retailers:
  adi:
    retailer_id: "C033038 ADI srl"
    internal_id: "4100123"
    email_label: ADI
    file_extensions: [xlsx]
    enabled: true
  asos:
    retailer_id: "C068113 ASOS"
    internal_id: "4100456"
    email_label: ASOS
    file_extensions: [xlsx]
    enabled: true
    options:
      workbook_password: hunter2
  thg:
    retailer_id: "C071001 THG"
    email_label: THG
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retailsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig(writeConfig(t, testYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/retailsync/state.db", cfg.StatePath)
	assert.Equal(t, "retail-data", cfg.Storage.Bucket)
	assert.Equal(t, "unprocessed", cfg.Storage.UnprocessedPrefix)
	assert.Equal(t, 5439, cfg.Warehouse.Port)
	assert.Equal(t, "retail.stg_sales", cfg.Warehouse.StagingSalesTable)
	assert.Equal(t, "ops@brand.example.com", cfg.Mail.NotifyTo)

	adi := cfg.Retailers["adi"]
	assert.True(t, adi.Enabled)
	assert.Equal(t, "C033038 ADI srl", adi.RetailerID)
	assert.Equal(t, []string{"xlsx"}, adi.FileExtensions)
	assert.Equal(t, "hunter2", cfg.Retailers["asos"].Options["workbook_password"])

	assert.Same(t, cfg, Current())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	ResetConfig()
	t.Setenv("RETAILSYNC_WAREHOUSE__HOST", "other.example.com")
	t.Setenv("RETAILSYNC_VERBOSE", "true")

	cfg, err := LoadConfig(writeConfig(t, testYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, "other.example.com", cfg.Warehouse.Host)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigFlagOverride(t *testing.T) {
	ResetConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "")
	flags.String("download-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--state", "/tmp/state.db", "--download-dir", "/tmp/dl"}))

	cfg, err := LoadConfig(writeConfig(t, testYAML), flags)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/state.db", cfg.StatePath)
	assert.Equal(t, "/tmp/dl", cfg.DownloadDir)
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultDownloadDir, cfg.DownloadDir)
	assert.Equal(t, "raw", cfg.Storage.RawPrefix)
	assert.Equal(t, "is:unread", cfg.Mail.SearchCriteria)
	assert.True(t, cfg.Mail.NotifyErrors)
	assert.Empty(t, cfg.Retailers)
}

func TestValidateUnknownRetailer(t *testing.T) {
	ResetConfig()
	bad := testYAML + `
  blockbuster:
    retailer_id: "C1 Blockbuster"
    email_label: BB
    enabled: true
`
	_, err := LoadConfig(writeConfig(t, bad), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown retailer "blockbuster"`)
}

func TestValidateMissingRetailerID(t *testing.T) {
	cfg := &Config{Retailers: map[string]RetailerConfig{
		"adi": {Enabled: true, EmailLabel: "ADI"},
	}}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retailer_id is required")
}

func TestValidateDisabledRetailerNeedsNoID(t *testing.T) {
	cfg := &Config{Retailers: map[string]RetailerConfig{
		"thg": {Enabled: false},
	}}

	assert.NoError(t, cfg.Validate())
}

func TestValidateWarehouse(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.ValidateWarehouse())

	cfg.Warehouse = WarehouseConfig{
		Host: "h", Database: "d",
		StagingSalesTable: "a", StagingInventoryTable: "b",
		FinalSalesTable: "c", FinalInventoryTable: "e",
	}
	assert.NoError(t, cfg.ValidateWarehouse())
}

func TestRetailerInfos(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig(writeConfig(t, testYAML), nil)
	require.NoError(t, err)

	infos, err := cfg.RetailerInfos()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	asos := infos[retailer.TagASOS]
	assert.True(t, asos.Enabled)
	assert.Equal(t, "hunter2", asos.Option(retailer.WorkbookPassword))
	assert.False(t, infos[retailer.TagTHG].Enabled)
}

func TestEnabledRetailers(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig(writeConfig(t, testYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"adi", "asos"}, cfg.EnabledRetailers())
}
