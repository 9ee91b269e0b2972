package lcfiplot

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the steering of one analysis job.
type Config struct {
	FlavourTagCollections []string `mapstructure:"flavour_tag_collections"`
	TagInputsCollections  []string `mapstructure:"tag_inputs_collections"`

	JetCollection             string `mapstructure:"jet_collection"`
	VertexCollection          string `mapstructure:"vertex_collection"`
	TrueJetFlavourCollection  string `mapstructure:"true_jet_flavour_collection"`
	BVertexChargeCollection   string `mapstructure:"b_vertex_charge_collection"`
	CVertexChargeCollection   string `mapstructure:"c_vertex_charge_collection"`
	MCParticleCollection      string `mapstructure:"mc_particle_collection"`
	TrueTracksToMCPCollection string `mapstructure:"true_tracks_to_mcp_collection"`
	ZVRESDecayChainCollection string `mapstructure:"zvres_decay_chain_collection"`

	JetCuts `mapstructure:",squash"`

	BTagNNCut float64 `mapstructure:"b_tag_nn_cut"`
	CTagNNCut float64 `mapstructure:"c_tag_nn_cut"`

	// VertexChargeTagCollection selects the flavour-tag collection whose
	// scores gate the vertex-charge plots and feed the tuple.
	VertexChargeTagCollection int `mapstructure:"vertex_charge_tag_collection"`

	NumberOfPoints      int      `mapstructure:"number_of_points"`
	MakeTuple           bool     `mapstructure:"make_tuple"`
	MakeAdditionalPlots bool     `mapstructure:"make_additional_plots"`
	ZoomedVariables     []string `mapstructure:"zoomed_variables"`

	ChargeBuckets ChargeThresholds `mapstructure:"charge_buckets"`
	VertexCharge  VertexChargeCuts `mapstructure:"vertex_charge"`
}

// VertexChargeCuts are the magnitudes above which a b- or c-tuned vertex
// charge counts as charged.
type VertexChargeCuts struct {
	BCut float64 `mapstructure:"b_cut"`
	CCut float64 `mapstructure:"c_cut"`
}

// DefaultConfig returns the steering used when no file is given.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads the steering file at path, if any, on top of the
// defaults. Environment variables prefixed LCFIPLOT_ override the file,
// and flags in fs that were set on the command line override everything.
// A flag binds to the key of the same name with dashes as underscores.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LCFIPLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.Replace(f.Name, "-", "_", -1), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("flavour_tag_collections", []string{"FlavourTag"})
	v.SetDefault("tag_inputs_collections", []string{"FlavourTagInputs"})
	v.SetDefault("jet_collection", "FTSelectedJets")
	v.SetDefault("vertex_collection", "ZVRESVertices")
	v.SetDefault("true_jet_flavour_collection", "TrueJetFlavour")
	v.SetDefault("b_vertex_charge_collection", "BCharge")
	v.SetDefault("c_vertex_charge_collection", "CCharge")
	v.SetDefault("mc_particle_collection", "MCParticle")
	v.SetDefault("true_tracks_to_mcp_collection", "")
	v.SetDefault("zvres_decay_chain_collection", "")

	v.SetDefault("cos_theta_jet_min", -1.0)
	v.SetDefault("cos_theta_jet_max", 1.0)
	v.SetDefault("p_jet_min", 0.0)
	v.SetDefault("p_jet_max", 10000.0)

	v.SetDefault("b_tag_nn_cut", 0.7)
	v.SetDefault("c_tag_nn_cut", 0.7)
	v.SetDefault("vertex_charge_tag_collection", 0)

	v.SetDefault("number_of_points", 100)
	v.SetDefault("make_tuple", false)
	v.SetDefault("make_additional_plots", false)
	v.SetDefault("zoomed_variables", []string{"D0Significance1", "D0Significance2", "Z0Significance1", "Z0Significance2"})

	v.SetDefault("charge_buckets.single", 0.5)
	v.SetDefault("charge_buckets.double", 1.5)
	v.SetDefault("vertex_charge.b_cut", 0.5)
	v.SetDefault("vertex_charge.c_cut", 0.5)
}

// Validate checks the steering for problems that would otherwise only show
// up as missing or mismatched histograms.
func (c *Config) Validate() error {
	if len(c.FlavourTagCollections) == 0 {
		return fmt.Errorf("%w: no flavour tag collections", ErrConfig)
	}
	if len(c.FlavourTagCollections) != len(c.TagInputsCollections) {
		return fmt.Errorf("%w: %d flavour tag collections but %d tag input collections",
			ErrConfig, len(c.FlavourTagCollections), len(c.TagInputsCollections))
	}
	if c.JetCollection == "" {
		return fmt.Errorf("%w: no jet collection", ErrConfig)
	}
	if c.VertexChargeTagCollection < 0 || c.VertexChargeTagCollection >= len(c.FlavourTagCollections) {
		return fmt.Errorf("%w: vertex charge tag collection %d out of range [0, %d)",
			ErrConfig, c.VertexChargeTagCollection, len(c.FlavourTagCollections))
	}
	if c.JetCuts.CosThetaMin > c.JetCuts.CosThetaMax {
		return fmt.Errorf("%w: cos(theta) cut min %v > max %v", ErrConfig, c.JetCuts.CosThetaMin, c.JetCuts.CosThetaMax)
	}
	if c.JetCuts.PMin > c.JetCuts.PMax {
		return fmt.Errorf("%w: momentum cut min %v > max %v", ErrConfig, c.JetCuts.PMin, c.JetCuts.PMax)
	}
	if c.NumberOfPoints <= 0 {
		return fmt.Errorf("%w: number of points must be positive, got %d", ErrConfig, c.NumberOfPoints)
	}
	if c.ChargeBuckets.Single <= 0 || c.ChargeBuckets.Double <= c.ChargeBuckets.Single {
		return fmt.Errorf("%w: charge bucket thresholds must satisfy 0 < single < double", ErrConfig)
	}
	return nil
}
