package convert

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FontsDir is the sub-directory of the temporary directory
// receiving the font files.
const FontsDir = "fonts"

// first private use code, assigned to glyphs with invalid codes
const firstUnknownChar = 0xE000

// FontKey identifies a font definition in a collection of files.
type FontKey struct {
	File int
	ID   uint16
}

type unknownChar struct {
	data *ir.GlyphData
	char rune
}

// FontConverter builds the fonts of a collection of files
// and groups them.
type FontConverter struct {
	cfg    *config.Convert
	glyphs *GlyphPathParser
	logger *slog.Logger

	unknownChars map[ir.GlyphKey][]unknownChar
	nextUnknown  rune
}

func NewFontConverter(cfg *config.Convert, logger *slog.Logger) *FontConverter {
	return &FontConverter{cfg: cfg, glyphs: NewGlyphPathParser(logger), logger: logger}
}

// CreateFontGroups converts the font definitions of the files, merges them
// into groups and assigns unique names to the groups. contexts has one
// root context per file.
func (fc *FontConverter) CreateFontGroups(contexts []*Context, files []*swf.File) ([]*FontGroup, map[FontKey]*ir.Font, error) {
	fc.unknownChars = map[ir.GlyphKey][]unknownChar{}
	fc.nextUnknown = firstUnknownChar

	var (
		all   []*ir.Font
		fonts = map[FontKey]*ir.Font{}
	)
	for i, file := range files {
		for _, tag := range file.Tags {
			def, ok := tag.(*swf.DefineFont)
			if !ok {
				continue
			}
			ctx := contexts[i].ObjectChild([]int{int(def.ID)})
			font, err := fc.createFont(ctx, def)
			if err != nil {
				return nil, nil, err
			}
			all = append(all, font)
			fonts[FontKey{File: i, ID: def.ID}] = font
		}
	}

	groups := fc.mergeFonts(all)
	if fc.cfg.GroupFonts && len(all) != 0 {
		fc.logger.Info("font groups created", "groups", len(groups), "fonts", len(all))
	}
	fc.assignUniqueNames(groups)
	return groups, fonts, nil
}

func (fc *FontConverter) fontScale(ctx *Context, def *swf.DefineFont) (ir.FontScale, error) {
	switch def.Version {
	case 2:
		return config.FontScale(fc.cfg.Debug.FontScale2), nil
	case 3:
		return config.FontScale(fc.cfg.Debug.FontScale3), nil
	default:
		return ir.FontScale{}, ctx.Errorf("unsupported DefineFont%d tag", def.Version)
	}
}

func (fc *FontConverter) createFont(ctx *Context, def *swf.DefineFont) (*ir.Font, error) {
	scale, err := fc.fontScale(ctx, def)
	if err != nil {
		return nil, err
	}
	if len(def.Kernings) != 0 {
		return nil, ctx.Errorf("unsupported font kerning")
	}
	data := fc.glyphs.Parse(ctx, def, scale)
	assigned := make(map[rune]bool, len(def.Codes))
	glyphs := make([]ir.FontGlyph, len(def.Codes))
	for i, code := range def.Codes {
		glyph := fc.createGlyph(data[i], code, assigned)
		glyphs[i] = glyph
		assigned[glyph.Char] = true
	}
	return &ir.Font{
		Name: def.Name,
		Metrics: ir.FontMetrics{
			Ascent:  float32(def.Ascent) * scale.ScaleX,
			Descent: float32(def.Descent) * scale.ScaleX,
			Scale:   scale,
		},
		Glyphs: glyphs,
	}, nil
}

func isInvalidChar(c rune) bool {
	return unicode.IsSpace(c) || c < 0x20 || (c >= 0xFFF0 && c <= 0xFFFF)
}

// createGlyph normalizes whitespace glyphs and reassigns
// duplicate or invalid codes to private use codes. A glyph with the
// same data always gets the same code, if available.
func (fc *FontConverter) createGlyph(data *ir.GlyphData, code rune, assigned map[rune]bool) ir.FontGlyph {
	if data.IsWhitespace() {
		return ir.FontGlyph{Char: ' ', Data: &ir.GlyphData{Advance: ir.WhitespaceAdvance}}
	}
	if !assigned[code] && !isInvalidChar(code) {
		return ir.FontGlyph{Char: code, Data: data}
	}

	key := data.Key()
	var previous *unknownChar
	for i, u := range fc.unknownChars[key] {
		if u.data.Equal(data) {
			previous = &fc.unknownChars[key][i]
			break
		}
	}
	char := fc.nextUnknown
	switch {
	case previous == nil:
		fc.unknownChars[key] = append(fc.unknownChars[key], unknownChar{data: data, char: char})
		fc.nextUnknown++
	case !assigned[previous.char]:
		char = previous.char
	default:
		fc.nextUnknown++
	}
	if char != code {
		fc.logger.Debug("duplicate or invalid char code reassigned",
			"code", fmt.Sprintf("0x%04x", code), "char", fmt.Sprintf("0x%04x", char))
	}
	return ir.FontGlyph{Char: char, Data: data}
}

// mergeFonts merges the fonts with the same name, requiring a common
// glyph, then every group regardless of the names.
func (fc *FontConverter) mergeFonts(fonts []*ir.Font) []*FontGroup {
	var (
		names  []string
		byName = map[string][]*FontGroup{}
	)
	for _, font := range fonts {
		if _, has := byName[font.Name]; !has {
			names = append(names, font.Name)
		}
		byName[font.Name] = append(byName[font.Name], newFontGroup(font))
	}
	if !fc.cfg.GroupFonts {
		var out []*FontGroup
		for _, name := range names {
			out = append(out, byName[name]...)
		}
		return out
	}
	var groups []*FontGroup
	for _, name := range names {
		fc.logger.Debug("merging fonts", "name", name)
		groups = append(groups, mergeFontGroups(byName[name], true)...)
	}
	fc.logger.Debug("merging fonts ignoring names")
	return mergeFontGroups(groups, false)
}

var lowerCaser = cases.Lower(language.Und)

// fileNameRune replaces the spaces and the characters not allowed in
// file names.
func fileNameRune(r rune) rune {
	switch {
	case unicode.IsSpace(r), strings.ContainsRune(`/\:*?"<>|`, r), r < 0x20:
		return '-'
	default:
		return r
	}
}

func (fc *FontConverter) assignUniqueNames(groups []*FontGroup) {
	names := make(map[string]bool, len(groups))
	for i, group := range groups {
		var name string
		if fc.cfg.KeepFontNames {
			name = lowerCaser.String(strings.Map(fileNameRune, group.Name))
			if name == "" {
				name = uuid.NewString()
			}
		} else {
			name = strconv.Itoa(i)
		}
		if names[name] {
			n := 2
			for names[name+"-"+strconv.Itoa(n)] {
				n++
			}
			name += "-" + strconv.Itoa(n)
		}
		group.Name = name
		names[name] = true
	}
}

// ungroupFonts copies the name and file of each group to its fonts.
func ungroupFonts(groups []*FontGroup) {
	for _, group := range groups {
		for _, font := range group.Fonts {
			font.Name = group.Name
			font.File = group.File
		}
	}
}
