package cfg

type Cfg struct {
	// Source and output
	SourceURL      string
	OutputDir      string
	FilePrefix     string
	PartitionsFile string
	Timeout        int
	Verify         bool

	// Serve mode
	Serve    bool
	Port     string
	Interval int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
