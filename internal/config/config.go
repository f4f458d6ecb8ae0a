package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Engine    Engine            `yaml:"engine"`
	Symbols   map[string]Symbol `yaml:"symbols" validate:"required,min=1,dive"`
	SourceRef SourceReference   `yaml:"source"`
	Report    string            `yaml:"report"`
	DebugPlot string            `yaml:"debug_plot"`
	DataDump  string            `yaml:"data_dump"`
	Metrics   string            `yaml:"metrics"`
	LogLevel  string            `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	d := yaml.NewDecoder(r)
	err := d.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("unable to apply config defaults: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.SourceRef.Source == nil {
		return nil, errors.New("invalid config: candle source is not configured")
	}

	return &cfg, nil
}

func ReadFromFile(path string) (cfg *Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("unable to close config file: %w", cerr))
		}
	}()

	return Read(f)
}

// Default returns the engine configuration with every default applied.
func Default() Engine {
	var e Engine
	if err := defaults.Set(&e); err != nil {
		panic(fmt.Sprintf("invalid engine defaults: %v", err))
	}
	return e
}

type Engine struct {
	Weights  Weights            `yaml:"weights"`
	Decision Decision           `yaml:"decision"`
	Baseline map[string]float64 `yaml:"baseline"`
}

// Weights tunes the weight manager. Zero values are replaced by defaults.
type Weights struct {
	MinWeight  float64 `yaml:"min_weight" default:"0.02" validate:"gte=0,lt=1"`
	Alpha      float64 `yaml:"alpha" default:"0.12" validate:"gt=0,lte=1"`
	WinWeight  float64 `yaml:"win_weight" default:"0.6" validate:"gte=0"`
	EdgeWeight float64 `yaml:"edge_weight" default:"0.4" validate:"gte=0"`
	EdgeCap    float64 `yaml:"edge_cap" default:"1.5" validate:"gt=0"`
	MaxBoost   float64 `yaml:"max_boost" default:"1.35" validate:"gte=1"`
	MaxCut     float64 `yaml:"max_cut" default:"0.65" validate:"gt=0,lte=1"`
}

type Decision struct {
	BuyThreshold       float64 `yaml:"buy_threshold" default:"0.15" validate:"gte=0"`
	SellThreshold      float64 `yaml:"sell_threshold" default:"-0.15" validate:"lte=0"`
	BasePositionPct    float64 `yaml:"base_position_pct" default:"0.25" validate:"gt=0,lte=1"`
	MinPositionPct     float64 `yaml:"min_position_pct" default:"0.05" validate:"gte=0,lte=1"`
	MaxPositionPct     float64 `yaml:"max_position_pct" default:"0.5" validate:"gt=0,lte=1"`
	MinStopATRMultiple float64 `yaml:"min_stop_atr_multiple" default:"1.0" validate:"gt=0"`
	MaxStopATRMultiple float64 `yaml:"max_stop_atr_multiple" default:"3.0" validate:"gt=0"`
	ConfirmOnClose     *bool   `yaml:"confirm_on_close" default:"true"`
	DefaultVoteQuality float64 `yaml:"default_vote_quality" default:"0.9" validate:"gt=0,lte=1"`
}

type Symbol struct {
	Timeframes []Timeframe `yaml:"timeframes" validate:"required,min=1,dive"`
}

type Timeframe struct {
	Label      string                        `yaml:"label" validate:"required"`
	Weight     float64                       `yaml:"weight"`
	Bars       int                           `yaml:"bars" default:"300" validate:"gt=0"`
	Indicators map[string]map[string]float64 `yaml:"indicators"`
}

// candle sources

type SourceReference struct {
	Source Source
}

type Source interface{}

type CSV struct {
	Files    map[string]string `yaml:"files" validate:"required,min=1"`
	Interval string            `yaml:"interval" default:"1m"`
	End      time.Time         `yaml:"end"`
}

type Alpaca struct {
	BaseUrl string    `yaml:"base_url"`
	ApiKey  string    `yaml:"api_key"`
	Secret  string    `yaml:"secret"`
	End     time.Time `yaml:"end"`
}

func (w *SourceReference) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) == 0 {
		return nil
	}

	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return errors.New("invalid source yaml format")
	}

	key := value.Content[0].Value
	switch key {
	case "csv":
		var csv CSV
		if err := value.Content[1].Decode(&csv); err != nil {
			return fmt.Errorf("failed parsing csv source config: %w", err)
		}
		if err := defaults.Set(&csv); err != nil {
			return fmt.Errorf("failed applying csv source defaults: %w", err)
		}
		if err := validate.Struct(&csv); err != nil {
			return fmt.Errorf("invalid csv source config: %w", err)
		}
		w.Source = csv
	case "alpaca":
		var alpaca Alpaca
		if err := value.Content[1].Decode(&alpaca); err != nil {
			return fmt.Errorf("failed parsing Alpaca source config: %w", err)
		}
		w.Source = alpaca
	default:
		return fmt.Errorf("unknown source type: %s", key)
	}

	return nil
}
