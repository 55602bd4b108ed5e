// The list server uses flags and a single config file for configuration.
// A config file is stored in .txtpb format and holds a google.protobuf.Struct keyed by flag name, e.g.
//
//	fields { key: "address" value { string_value: ":6390" } }
//	fields { key: "max_list_length" value { number_value: 100000 } }

package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/nobletooth/tlist/pkg/utils"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
)

var configFilePath = flag.String("config_file", "config.txtpb", "Path to the configuration file.")

// skippedConfigFlags can only be set from the command line.
var skippedConfigFlags = []string{"print_version", "config_file"}

// ReadConfigFile parses the .txtpb config file at `path`.
func ReadConfigFile(path string) (*structpb.Struct, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	conf := new(structpb.Struct)
	if err := prototext.Unmarshal(configBytes, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return conf, nil
}

// structValueToString converts a config value to its string representation suitable for flag setting.
func structValueToString(v *structpb.Value) (string, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue), nil
	case *structpb.Value_NumberValue:
		// Integral numbers must stay parseable by integer flags.
		if number := kind.NumberValue; number == math.Trunc(number) && math.Abs(number) < 1<<53 {
			return strconv.FormatInt(int64(number), 10), nil
		}
		return strconv.FormatFloat(kind.NumberValue, 'g', -1, 64), nil
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_ListValue, *structpb.Value_StructValue:
		return "", errors.New("lists and structs are not supported")
	default:
		return "", errors.New("value is not set")
	}
}

// setConfigFlags sets all the entries of `conf` to the global flag variables. Flags given on the command line
// (`explicit`) win over the config file.
func setConfigFlags(conf *structpb.Struct, explicit map[ /*flagName*/ string]bool) error {
	flagNames := make([]string, 0, len(conf.GetFields()))
	for flagName := range conf.GetFields() {
		flagNames = append(flagNames, flagName)
	}
	slices.Sort(flagNames)

	for _, flagName := range flagNames {
		if slices.Contains(skippedConfigFlags, flagName) {
			return fmt.Errorf("flag '%s' can only be set on the command line", flagName)
		}
		if flag.Lookup(flagName) == nil {
			return fmt.Errorf("unknown flag '%s' in config", flagName)
		}
		if explicit[flagName] {
			slog.Debug("Keeping the command line value of a flag.", "flag", flagName)
			continue
		}
		flagValue, err := structValueToString(conf.GetFields()[flagName])
		if err != nil {
			return fmt.Errorf("failed to convert flag %s: %w", flagName, err)
		}
		if err := flag.Set(flagName, flagValue); err != nil {
			return fmt.Errorf("failed to set flag %s: %w", flagName, err)
		}
	}
	return nil
}

// InitFlags initializes the flags from the config file specified by the -config_file flag.
// It should be called after defining all flags and before using them.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Info("Config file not specified. Skipping config initialization.")
		return
	}

	conf, err := ReadConfigFile(*configFilePath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Config file does not exist.", "path", *configFilePath, "error", err)
		return
	}
	if err != nil { // If the config file cannot be loaded, we use default flag values.
		slog.Error("Failed to load config file.", "error", err)
		return
	}

	if err := setConfigFlags(conf, utils.CommandLineFlags()); err != nil {
		slog.Error("Failed to set flags from config file.", "error", err)
		return
	}
}

// CollectUnregisteredFlags collects all flags that don't have an entry in the given config.
// An error exists in the results corresponding to each unregistered flag.
func CollectUnregisteredFlags(conf *structpb.Struct) []error {
	errs := make([]error, 0)
	flag.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") { // Skip test flags.
			return
		}
		if slices.Contains(skippedConfigFlags, f.Name) {
			return
		}
		if _, flagHasConfigEntry := conf.GetFields()[f.Name]; !flagHasConfigEntry {
			errs = append(errs, fmt.Errorf("flag '%s' has not been defined in config", f.Name))
		}
	})
	return errs
}
