// features_vav.go - build-time feature flags

package main

import (
	"fmt"
	"runtime"
	"sort"
)

// Features holds compile-time toggles for behavior that is intentionally
// switchable rather than fixed.
type Features struct {
	// ExposeEnv4 controls whether the acceleration-trigger envelope (ENV4)
	// is pushed onto the CVBus trigger queue at all. The literal 5-slot
	// CVBus snapshot never gains a 6th float slot either way - this
	// only gates whether TriggerEnv4Accel events are emitted for a
	// consumer that wants them (e.g. a future DAC channel or GUI LED).
	// Default false: stay conservative until a user confirms ENV4 should
	// reach hardware.
	ExposeEnv4 bool
}

var featureSet = Features{ExposeEnv4: false}

// Version is the engine's reported build version, printed by printFeatures
// and in main's "vav running" startup log line.
const Version = "0.1.0"

var compiledFeatures []string

func init() {
	compiledFeatures = append(compiledFeatures, "contour-scanner", "alien4-engine", "multiverse-renderer")
	if featureSet.ExposeEnv4 {
		compiledFeatures = append(compiledFeatures, "env4-external-trigger")
	}
}

func printFeatures() {
	fmt.Printf("vav %s\n", Version)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Println()
	fmt.Println("Compiled features:")

	sort.Strings(compiledFeatures)
	for _, f := range compiledFeatures {
		fmt.Printf("  %s\n", f)
	}
	if len(compiledFeatures) == 0 {
		fmt.Println("  (none)")
	}
}
