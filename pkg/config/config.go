package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"easyfilter/pkg/log"
)

const (
	// DefaultHistoryKey is the store key holding the serialized scan history.
	DefaultHistoryKey = "recentScans"
	// DefaultHistoryLimit is the number of scans kept in the history.
	DefaultHistoryLimit = 10
)

// SystemType defines the platforms the scanner knows how to drive a camera on.
// See GetImageCommand().
type SystemType string

const (
	SystemMac   SystemType = "Mac"
	SystemPi    SystemType = "Pi"
	SystemLinux SystemType = "Linux"
)

// HardwareType defines the capture implementation to use.
type HardwareType string

const (
	HWCore       HardwareType = "Core"        // In-memory frames, no I/O.
	HWDisk       HardwareType = "Disk"        // Frames read from image or PDF files.
	HWPeripheral HardwareType = "Peripherals" // Physical camera driven by an external command.
)

// StoreType selects the backend holding the scan history.
type StoreType string

const (
	StoreMemory   StoreType = "memory"
	StoreFile     StoreType = "file"
	StoreSQLite   StoreType = "sqlite"
	StorePostgres StoreType = "postgres"
	StoreRedis    StoreType = "redis"
)

// Facing is the camera direction hint.
type Facing string

const (
	FacingEnvironment Facing = "environment" // rear camera
	FacingUser        Facing = "user"        // front camera
)

// Config holds all parameters for a scanner instance.
type Config struct {
	HardwareType HardwareType
	System       SystemType
	Facing       Facing
	Device       string // Camera device, e.g. /dev/video0; empty for the system default.

	PicturePath   string        // Where captured stills are written.
	Frames        []string      // Image or PDF files fed as frames on Disk hardware.
	FrameInterval time.Duration // Pause between decode attempts.
	TryHarder     bool          // Slower, more thorough decoding.

	Store         StoreType
	StorePath     string // Directory for file, database file for sqlite.
	StoreDSN      string // PostgreSQL connection string.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HistoryKey   string
	HistoryLimit int
	TimeZone     string

	List      bool   // lookup: print the known barcodes.
	LabelPath string // Output directory for PDF labels.
	LabelFont string // TrueType font for label text; needed for Korean copy.
	Cores     int    // Workers used when writing several labels.

	LogLevel     log.LogLevel
	LogFormat    log.Format
	LogFile      string
	PrintMetrics bool

	// Args are the positional arguments left after flag parsing.
	Args []string
}

// NewConfig parses args with a flag set named after the subcommand.
func NewConfig(name string, args []string) (*Config, error) {
	log.Debug("Parsing command-line flags for %s...", name)
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	hwType := fs.String("hw", string(HWPeripheral), "Capture implementation (Core, Disk, Peripherals).")
	system := fs.String("system", string(SystemLinux), "Camera platform (Mac, Pi, Linux).")
	facing := fs.String("facing", string(FacingEnvironment), "Preferred camera (environment, user).")
	device := fs.String("device", "", "Camera device; empty for the system default.")
	picPath := fs.String("pics", filepath.Join(os.TempDir(), "easyfilter"), "Path for captured pictures.")
	interval := fs.Duration("frame-interval", 100*time.Millisecond, "Pause between frames while scanning.")
	tryHarder := fs.Bool("try-harder", false, "Spend more time per frame looking for a barcode.")

	store := fs.String("store", string(StoreFile), "History backend (memory, file, sqlite, postgres, redis).")
	storePath := fs.String("store-path", defaultStorePath(), "Directory (file) or database file (sqlite) for the history.")
	storeDSN := fs.String("store-dsn", "", "PostgreSQL connection string.")
	redisAddr := fs.String("redis-addr", "localhost:6379", "Redis address.")
	redisPassword := fs.String("redis-password", "", "Redis password.")
	redisDB := fs.Int("redis-db", 0, "Redis database number.")

	historyKey := fs.String("history-key", DefaultHistoryKey, "Key holding the scan history.")
	historyLimit := fs.Int("history-limit", DefaultHistoryLimit, "Number of recent scans kept.")
	timeZone := fs.String("tz", "Asia/Seoul", "Time zone for display times.")

	list := fs.Bool("list", false, "List the barcodes of known parts.")
	labelPath := fs.String("label-path", ".", "Output directory for PDF labels.")
	labelFont := fs.String("label-font", "", "TrueType font used for label text.")
	cores := fs.Int("cores", runtime.NumCPU(), "Number of workers for batch work.")

	logLevel := fs.String("log-level", "info", "Set log level (trace, debug, info, warn, error).")
	logFormat := fs.String("log-format", "text", "Log encoding (text, json).")
	logFile := fs.String("log-file", "", "Write logs to this file instead of stderr.")
	printMetrics := fs.Bool("print-metrics", false, "Print scan timing metrics.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	level, ok := log.ParseLevel(*logLevel)
	if !ok {
		log.Info("Unknown log level '%s', defaulting to 'info'", *logLevel)
	}
	format, ok := log.ParseFormat(*logFormat)
	if !ok {
		log.Info("Unknown log format '%s', defaulting to 'text'", *logFormat)
	}
	log.Configure(log.Options{Level: level, Format: format})

	cfg := &Config{
		HardwareType:  HardwareType(*hwType),
		System:        SystemType(*system),
		Facing:        Facing(*facing),
		Device:        *device,
		PicturePath:   filepath.Clean(*picPath),
		FrameInterval: *interval,
		TryHarder:     *tryHarder,

		Store:         StoreType(*store),
		StorePath:     *storePath,
		StoreDSN:      *storeDSN,
		RedisAddr:     *redisAddr,
		RedisPassword: *redisPassword,
		RedisDB:       *redisDB,

		HistoryKey:   *historyKey,
		HistoryLimit: *historyLimit,
		TimeZone:     *timeZone,

		List:      *list,
		LabelPath: filepath.Clean(*labelPath),
		LabelFont: *labelFont,
		Cores:     *cores,

		LogLevel:     level,
		LogFormat:    format,
		LogFile:      *logFile,
		PrintMetrics: *printMetrics,

		Args: fs.Args(),
	}
	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("history limit must be positive, got %d", cfg.HistoryLimit)
	}
	if cfg.HardwareType == HWDisk {
		cfg.Frames = cfg.Args
	}
	log.Debug("Config: %s", cfg)
	return cfg, nil
}

// Location resolves TimeZone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Warn("Unknown time zone '%s', using local time: %v", c.TimeZone, err)
		return time.Local
	}
	return loc
}

// GetImageCommand returns the command that takes a still picture on the configured system.
// SystemType affects logic only if HWPeripheral is chosen.
func (c *Config) GetImageCommand(outputPath string) (string, []string, error) {
	switch c.System {
	case SystemPi:
		cam := "0"
		if c.Facing == FacingUser {
			cam = "1"
		}
		return "libcamera-still", []string{"-o", outputPath, "--camera", cam, "--timeout", "1", "--nopreview"}, nil
	case SystemMac:
		if c.Device != "" {
			return "imagesnap", []string{"-d", c.Device, outputPath}, nil
		}
		return "imagesnap", []string{outputPath}, nil
	case SystemLinux:
		device := c.Device
		if device == "" {
			device = "/dev/video0"
		}
		return "fswebcam", []string{"--no-banner", "-q", "-d", device, outputPath}, nil
	default:
		return "", nil, fmt.Errorf("no camera command for system type %s", c.System)
	}
}

// String returns a string representation of the Config instance
func (c *Config) String() string {
	return fmt.Sprintf("Config{HW:%s System:%s Facing:%s Device:%s PicPath:%s Frames:%d "+
		"Interval:%s Store:%s StorePath:%s Redis:%s/%d HistoryKey:%s Limit:%d TZ:%s "+
		"LogLevel:%d PrintMetrics:%t}",
		c.HardwareType, c.System, c.Facing, c.Device, c.PicturePath, len(c.Frames),
		c.FrameInterval, c.Store, c.StorePath, c.RedisAddr, c.RedisDB, c.HistoryKey,
		c.HistoryLimit, c.TimeZone, c.LogLevel, c.PrintMetrics)
}

// --- Config Helpers ---

// EnsureDirectory creates path if necessary and returns its cleaned form.
func EnsureDirectory(path string) (string, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return path, nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "easyfilter")
}
