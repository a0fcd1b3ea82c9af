package model

// Rules describe how test code is recognized in a source tree and in a report.
// The zero value is not usable; start from DefaultRules.
type Rules struct {
	// Manifest is the project file that marks a source root's parent directory.
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
	// SourceDir is the conventional source subdirectory next to Manifest.
	SourceDir string `mapstructure:"source_dir" yaml:"source_dir"`
	// Extension selects the files scanned under each root.
	Extension string `mapstructure:"extension" yaml:"extension"`

	TestAnnotation string `mapstructure:"test_annotation" yaml:"test_annotation"`
	FunctionDef    string `mapstructure:"function_def" yaml:"function_def"`
	TestConfig     string `mapstructure:"test_config" yaml:"test_config"`
	ModuleOpen     string `mapstructure:"module_open" yaml:"module_open"`

	// Lookahead is how many lines after TestConfig may hold ModuleOpen.
	Lookahead int `mapstructure:"lookahead" yaml:"lookahead"`

	// SourceMarker anchors path normalization.
	SourceMarker string `mapstructure:"source_marker" yaml:"source_marker"`
	// TestDirs mark whole report blocks as test code when contained in the path.
	TestDirs []string `mapstructure:"test_dirs" yaml:"test_dirs"`
	// TestFiles mark whole report blocks as test code when the path ends with one.
	TestFiles []string `mapstructure:"test_files" yaml:"test_files"`
}

// Default rule values for Rust crates.
const (
	DefaultManifest       = "Cargo.toml"
	DefaultSourceDir      = "src"
	DefaultExtension      = ".rs"
	DefaultTestAnnotation = `^\s*#\[test\]\s*$`
	DefaultFunctionDef    = `^\s*fn\s+([A-Za-z0-9_]+)`
	DefaultTestConfig     = `^\s*#\[cfg\s*\(\s*test\s*\)\s*\]`
	DefaultModuleOpen     = `^\s*mod\s+tests\s*\{`
	DefaultLookahead      = 5
	DefaultSourceMarker   = "/src/"
)

// DefaultRules returns the rules for Cargo workspaces.
func DefaultRules() Rules {
	return Rules{
		Manifest:       DefaultManifest,
		SourceDir:      DefaultSourceDir,
		Extension:      DefaultExtension,
		TestAnnotation: DefaultTestAnnotation,
		FunctionDef:    DefaultFunctionDef,
		TestConfig:     DefaultTestConfig,
		ModuleOpen:     DefaultModuleOpen,
		Lookahead:      DefaultLookahead,
		SourceMarker:   DefaultSourceMarker,
		TestDirs:       []string{"/tests/"},
		TestFiles:      []string{"/tests.rs"},
	}
}
