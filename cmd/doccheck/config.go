// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doccheck/internal/history"
	"github.com/pdiddy/doccheck/pkg/types"
)

// Configuration keys. Each can be set in doccheck.yaml or as DOCCHECK_<KEY>.
const (
	keyStrict        = "strict"
	keyFormat        = "format"
	keyExtensions    = "extensions"
	keyExclude       = "exclude"
	keyWorkers       = "workers"
	keyIgnoreKeys    = "ignore_keys"
	keyXMLEnvelope   = "xml_envelope"
	keyRecord        = "record"
	keyHistoryDB     = "history_db"
	keyWatchDebounce = "watch_debounce"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyStrict, false)
	v.SetDefault(keyFormat, string(types.FormatText))
	v.SetDefault(keyExtensions, types.DefaultExtensions)
	v.SetDefault(keyExclude, []string{"_build"})
	v.SetDefault(keyWorkers, 0)
	v.SetDefault(keyIgnoreKeys, []string{})
	v.SetDefault(keyXMLEnvelope, types.DefaultXMLEnvelope)
	v.SetDefault(keyRecord, false)
	v.SetDefault(keyHistoryDB, history.DefaultDBPath)
	v.SetDefault(keyWatchDebounce, 300*time.Millisecond)
}

// checkConfig builds the check settings from viper, letting flags that were
// set explicitly on cmd take precedence.
func checkConfig(cmd *cobra.Command) types.CheckConfig {
	return types.CheckConfig{
		Scan: types.ScanConfig{
			Extensions: viper.GetStringSlice(keyExtensions),
			Exclude:    viper.GetStringSlice(keyExclude),
			Workers:    intSetting(cmd, "workers", keyWorkers),
		},
		Dialect: types.DialectConfig{
			IgnoreKeys:  viper.GetStringSlice(keyIgnoreKeys),
			XMLEnvelope: viper.GetStringSlice(keyXMLEnvelope),
		},
		Strict: boolSetting(cmd, "strict", keyStrict),
		Format: types.OutputFormat(stringSetting(cmd, "format", keyFormat)),
	}
}

func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	return types.HistoryConfig{
		Record: boolSetting(cmd, "record", keyRecord),
		DBPath: stringSetting(cmd, "history-db", keyHistoryDB),
	}
}

func watchConfig() types.WatchConfig {
	return types.WatchConfig{Debounce: viper.GetDuration(keyWatchDebounce)}
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return viper.GetString(key)
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	return viper.GetInt(key)
}
