package config

import (
	"fmt"
	"strconv"
	"strings"
)

// SetParams applies -D key=value parameters.
func (cfg *Config) SetParams(params map[string]string) error {
	for key, value := range params {
		if err := cfg.SetParam(key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetParam applies one -D parameter.
func (cfg *Config) SetParam(key, value string) error {
	d := &cfg.Convert.Debug
	var err error
	switch key {
	case "parallelSwfDecoding":
		err = setBool(&cfg.Convert.ParallelSwfDecoding, value)
	case "parallelSwfConversion":
		err = setBool(&cfg.Convert.ParallelSwfConversion, value)
	case "parallelImageCreation":
		err = setBool(&cfg.Convert.ParallelImageCreation, value)
	case "parallelFrameRendering":
		if err = setBool(&cfg.PDF.ParallelFrameRendering, value); err == nil {
			cfg.SVG.ParallelFrameRendering = cfg.PDF.ParallelFrameRendering
			cfg.IR.ParallelFrameRendering = cfg.PDF.ParallelFrameRendering
		}
	case "parallelRasterization":
		err = setBool(&cfg.PDF.ParallelRasterization, value)
	case "keepFonts":
		err = setBool(&d.KeepFonts, value)
	case "keepImages":
		err = setBool(&d.KeepImages, value)
	case "drawShapeBounds":
		err = setBool(&d.DrawShapeBounds, value)
	case "drawTextBounds":
		err = setBool(&d.DrawTextBounds, value)
	case "drawClipBounds":
		err = setBool(&d.DrawClipBounds, value)
	case "disableClipping":
		err = setBool(&d.DisableClipping, value)
	case "disableBlending":
		err = setBool(&d.DisableBlending, value)
	case "disableMasking":
		err = setBool(&d.DisableMasking, value)
	case "recursiveFrames":
		err = setBool(&d.RecursiveFrames, value)
	case "framePadding":
		err = setFloat(&d.FramePadding, value)
	case "debugLineWidth":
		err = setFloat(&d.DebugLineWidth, value)
	case "ignoreGlyphOffsetsThreshold":
		err = setFloat(&d.IgnoreGlyphOffsetsThreshold, value)
	case "debugLineColor":
		err = d.DebugLineColor.Decode(value)
	case "frameSize":
		err = d.FrameSize.Decode(value)
	case "bitmapMatrixOffset":
		err = d.BitmapMatrixOffset.Decode(value)
	case "fontScale2":
		err = d.FontScale2.Decode(value)
	case "fontScale3":
		err = d.FontScale3.Decode(value)
	default:
		return fmt.Errorf("unknown parameter %q", key)
	}
	if err != nil {
		return fmt.Errorf("parameter %s: %w", key, err)
	}
	return nil
}

// ParseParam splits a key=value parameter.
func ParseParam(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid parameter %q: expected key=value", s)
	}
	return key, value, nil
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setFloat(dst *float32, value string) error {
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return err
	}
	*dst = float32(f)
	return nil
}
