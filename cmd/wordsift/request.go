package main

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/wordsift/internal/adjust"
	"github.com/chriscorrea/wordsift/internal/app"
	"github.com/chriscorrea/wordsift/internal/config"
	"github.com/chriscorrea/wordsift/internal/stopwords"
)

// buildRequest constructs an app.Request from the optional preset, then
// overlays every flag the user set explicitly.
func buildRequest(cmd *cobra.Command, args []string) (app.Request, error) {
	flags := cmd.Flags()

	req := app.Request{}
	if path, _ := flags.GetString("config"); path != "" {
		preset, err := config.LoadPreset(path)
		if err != nil {
			return app.Request{}, err
		}
		req = *preset
	}

	// positional input wins over the preset; no input at all means stdin
	switch {
	case len(args) > 0:
		req.InputRef = args[0]
	case req.InputRef == "":
		req.InputRef = "-"
	}

	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	setSlice := func(name string, dst *[]string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetStringSlice(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	setInt := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	setString("input-type", &req.InputType)
	setSlice("json-key", &req.JSONKeys)
	setBool("json-all-strings", &req.CollectAllJSONStrings)
	setString("selector", &req.HTMLSelector)
	setBool("include-all", &req.IncludeAllHTML)
	setSlice("extra-stop", &req.ExtraStopwords)
	setSlice("keep", &req.KeepWords)
	setInt("min-length", &req.MinTokenLength)
	setBool("merge-variants", &req.MergeVariants)
	setInt("max-items", &req.MaxItems)
	setInt("min-font", &req.MinFontSize)
	setInt("max-font", &req.MaxFontSize)
	setBool("analysis-only", &req.AnalysisOnly)
	setBool("no-cache", &req.SkipCache)
	if flags.Changed("reference-weight") {
		weight, _ := flags.GetInt("reference-weight")
		req.ReferenceWeight = app.Int(weight)
	}
	if flags.Changed("curve-power") {
		power, _ := flags.GetFloat64("curve-power")
		req.CurvePower = app.Float64(power)
	}
	if noRefs, _ := flags.GetBool("no-references"); noRefs {
		req.DetectReferences = app.Bool(false)
	}

	enabled, _ := flags.GetStringSlice("stop-group")
	disabled, _ := flags.GetStringSlice("disable-stop-group")
	if len(enabled) > 0 || len(disabled) > 0 || req.StopwordGroups == nil {
		base := req.StopwordGroups
		if base == nil {
			base = stopwords.Groups()
		}
		groups, err := resolveStopGroups(base, enabled, disabled)
		if err != nil {
			return app.Request{}, err
		}
		req.StopwordGroups = groups
	}

	noDefaults, _ := flags.GetBool("no-default-boosts")
	boostEntries, _ := flags.GetStringArray("boost")
	boosts, skipped := adjust.ParseBoosts(boostEntries)
	for _, e := range skipped {
		warn(cmd, "ignoring --boost %v", e)
	}
	req.Boosts = mergeBoosts(noDefaults, req.Boosts, boosts)

	adjustEntries, _ := flags.GetStringArray("adjust")
	adjustments, skipped := adjust.ParseAdjustments(adjustEntries)
	for _, e := range skipped {
		warn(cmd, "ignoring --adjust %v", e)
	}
	if len(adjustments) > 0 {
		if req.ManualAdjustments == nil {
			req.ManualAdjustments = make(map[string]int, len(adjustments))
		}
		maps.Copy(req.ManualAdjustments, adjustments)
	}

	return req, nil
}

// resolveStopGroups removes disabled groups from base and adds enabled ones.
// Disabling everything falls back to the full catalog. Unknown names are
// reported as *stopwords.UnknownGroupError.
func resolveStopGroups(base, enabled, disabled []string) ([]string, error) {
	for _, name := range slices.Concat(enabled, disabled) {
		if _, ok := stopwords.Words(name); !ok {
			return nil, &stopwords.UnknownGroupError{Name: name}
		}
	}

	off := stopwords.Set(disabled)
	var groups []string
	for _, name := range slices.Concat(base, enabled) {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, skip := off[name]; skip || slices.Contains(groups, name) {
			continue
		}
		groups = append(groups, name)
	}
	if len(groups) == 0 {
		return stopwords.Groups(), nil
	}
	return groups, nil
}

// mergeBoosts layers the built-in table (unless disabled), preset boosts and
// flag boosts, later layers winning.
func mergeBoosts(noDefaults bool, preset, flags map[string]float64) map[string]float64 {
	merged := make(map[string]float64)
	if !noDefaults {
		maps.Copy(merged, adjust.DefaultBoosts())
	}
	maps.Copy(merged, preset)
	maps.Copy(merged, flags)
	return merged
}
