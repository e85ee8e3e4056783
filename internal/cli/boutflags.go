package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/touche/internal/bout"
	"github.com/roach88/touche/internal/config"
)

// Fencers used when no bout file is given.
const (
	defaultAName  = "Alice"
	defaultASkill = 0.7
	defaultBName  = "Bob"
	defaultBSkill = 0.6
)

// BoutFlags are the bout-definition flags shared by run, batch, replay and
// serve. Flags that were set explicitly override the --config file.
type BoutFlags struct {
	Config    string
	Seed      uint64
	AName     string
	ASkill    float64
	BName     string
	BSkill    float64
	To        int
	Start     string
	MaxRounds int
}

// boutSetup is a fully resolved, validated bout definition.
type boutSetup struct {
	Config    bout.Config
	Seed      uint64
	MaxRounds int
}

func addBoutFlags(cmd *cobra.Command, f *BoutFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.Config, "config", "", "bout definition YAML file")
	fs.Uint64Var(&f.Seed, "seed", 0, "random seed (0 = random)")
	fs.StringVar(&f.AName, "a-name", defaultAName, "first fencer name")
	fs.Float64Var(&f.ASkill, "a-skill", defaultASkill, "first fencer skill in [0,1]")
	fs.StringVar(&f.BName, "b-name", defaultBName, "second fencer name")
	fs.Float64Var(&f.BSkill, "b-skill", defaultBSkill, "second fencer skill in [0,1]")
	fs.IntVar(&f.To, "to", bout.DefaultWinThreshold, "points needed to win")
	fs.StringVar(&f.Start, "start", bout.DefaultStartDistance.Slug(), "starting distance band")
	fs.IntVar(&f.MaxRounds, "max-rounds", config.DefaultMaxRounds, "round cap")
}

// boutFile builds the bout file from --config, then applies any flag that
// was set on the command line. Without --config every flag applies.
func (f *BoutFlags) boutFile(cmd *cobra.Command) (*config.BoutFile, error) {
	fromFile := f.Config != ""
	file := &config.BoutFile{
		Fencers: []config.FencerFile{
			{Name: f.AName, Skill: f.ASkill},
			{Name: f.BName, Skill: f.BSkill},
		},
	}
	if fromFile {
		loaded, err := config.LoadBoutFile(f.Config)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	set := func(name string) bool { return !fromFile || cmd.Flags().Changed(name) }
	if set("a-name") {
		file.Fencers[0].Name = f.AName
	}
	if set("a-skill") {
		file.Fencers[0].Skill = f.ASkill
	}
	if set("b-name") {
		file.Fencers[1].Name = f.BName
	}
	if set("b-skill") {
		file.Fencers[1].Skill = f.BSkill
	}
	if set("to") {
		to := f.To
		file.WinThreshold = &to
	}
	if set("start") {
		file.StartDistance = f.Start
	}
	if set("max-rounds") {
		file.MaxRounds = f.MaxRounds
	}
	if cmd.Flags().Changed("seed") {
		file.Seed = f.Seed
	}
	return file, nil
}

// resolve validates the bout definition and fixes the seed.
func (f *BoutFlags) resolve(cmd *cobra.Command) (boutSetup, error) {
	file, err := f.boutFile(cmd)
	if err != nil {
		return boutSetup{}, WrapExitError(ExitCommandError, "failed to load bout", err)
	}
	if file.MaxRounds < 0 {
		return boutSetup{}, NewExitError(ExitCommandError, "max-rounds must not be negative")
	}
	cfg, err := file.BoutConfig()
	if err != nil {
		return boutSetup{}, WrapExitError(ExitCommandError, "invalid bout", err)
	}
	seed, err := config.ResolveSeed(file.Seed)
	if err != nil {
		return boutSetup{}, WrapExitError(ExitCommandError, "failed to draw seed", err)
	}
	return boutSetup{Config: cfg, Seed: seed, MaxRounds: file.Rounds()}, nil
}
