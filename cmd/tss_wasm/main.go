//go:build js && wasm

package main

import (
	"bytes"
	"syscall/js"

	tss "github.com/lucasjlepore/tss-estimator"
	"github.com/lucasjlepore/tss-estimator/fitconvert"
	"github.com/lucasjlepore/tss-estimator/pipeline"
)

func main() {
	js.Global().Set("estimateFit", js.FuncOf(estimateFit))
	select {}
}

// estimateFit(fileBytes Uint8Array, options object) converts one FIT file in
// memory and returns its estimate, and the recorded score when the file
// passes the quality filter.
func estimateFit(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := js.Undefined()
	if len(args) > 1 {
		optsArg = args[1]
	}
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("fit file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read FIT bytes from JS input")
	}

	cfg := tss.DefaultConfig()
	cfg.RestHR = getInt(optsArg, "rest_hr", cfg.RestHR)
	cfg.ThresholdHR = getInt(optsArg, "threshold_hr", cfg.ThresholdHR)
	cfg.Alpha = getFloat(optsArg, "alpha", cfg.Alpha)
	cfg.MaxTimePerSample = getFloat(optsArg, "max_time_per_sample", cfg.MaxTimePerSample)
	if err := cfg.Validate(); err != nil {
		return failure(err.Error())
	}

	name := getString(optsArg, "source_file_name", "input.fit")
	rows, err := fitconvert.ConvertBytes(fileBytes)
	if err != nil {
		return failure(err.Error())
	}
	csv := rows.Bytes()

	raw, err := pipeline.ParseReaderUnfiltered(name, bytes.NewReader(csv))
	if err != nil {
		return failure(err.Error())
	}
	est := pipeline.EstimateRaw(raw, cfg)
	if est.Err != nil {
		return failure(est.Err.Error())
	}

	out := map[string]any{
		"ok":           true,
		"estimate":     est.TSS,
		"samples":      est.Samples,
		"elapsed_time": est.ElapsedTime,
	}
	res, err := pipeline.ParseReader(name, bytes.NewReader(csv), pipeline.Options{MaxTimePerSample: cfg.MaxTimePerSample})
	if err != nil {
		out["warnings"] = []any{err.Error()}
		return out
	}
	st := tss.Stats(res.HeartRate)
	out["research"] = map[string]any{
		"estimate":  tss.Estimate(res.HeartRate, cfg),
		"reference": res.ReferenceTSS,
		"min_hr":    st.Min,
		"avg_hr":    st.Avg,
		"max_hr":    st.Max,
	}
	return out
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string, fallback float64) float64 {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return fallback
	}
	return out.Float()
}

func getInt(v js.Value, key string, fallback int) int {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return fallback
	}
	return out.Int()
}
