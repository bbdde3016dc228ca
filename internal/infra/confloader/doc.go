// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports
// multiple sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, maps
//   - Watch Support: Callbacks on config file changes
//   - Type Safety: Unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Maps loaded last (command-line overrides)
//  2. Environment variables
//  3. Configuration file
//  4. Values already present in the target struct
package confloader
