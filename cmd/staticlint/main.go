// Command staticlint runs the analyzers the video catalog is checked with:
// a set of go vet passes, ineffassign, nilerr, the local noexit rule and
// the staticcheck checks listed in config.json.
//
// The list of staticcheck checks is embedded at build time and can be
// replaced at run time by pointing STATICLINT_CONFIG at another file.
package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/videocatalog/cmd/staticlint/noexit"
)

const configEnv = "STATICLINT_CONFIG"

//go:embed config.json
var defaultConfig []byte

// ConfigData lists the enabled staticcheck analyzers, e.g. "SA1000".
type ConfigData struct {
	Staticcheck []string
}

func loadConfig() (ConfigData, error) {
	data := defaultConfig
	if path := os.Getenv(configEnv); path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return ConfigData{}, fmt.Errorf("unable to read %s: %w", path, err)
		}
	}

	var cfg ConfigData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ConfigData{}, fmt.Errorf("unable to parse the staticlint config: %w", err)
	}

	return cfg, nil
}

func analyzers(cfg ConfigData) []*analysis.Analyzer {
	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noexit.Analyzer,
	}

	checks := make(map[string]bool)
	for _, v := range cfg.Staticcheck {
		checks[v] = true
	}

	for _, v := range staticcheck.Analyzers {
		if checks[v.Analyzer.Name] {
			myChecks = append(myChecks, v.Analyzer)
		}
	}

	return myChecks
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	multichecker.Main(analyzers(cfg)...)
}
