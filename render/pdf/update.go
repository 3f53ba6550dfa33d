package pdf

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/pdf/reader"
)

// applyMetadata adds the information, page labels and outline of meta
// to a PDF file, which is read back and written again.
func applyMetadata(data []byte, meta *Metadata, optimizeLabels bool, logger *slog.Logger) ([]byte, error) {
	if len(meta.Info) == 0 && len(meta.PageLabels) == 0 && len(meta.Outline) == 0 {
		return data, nil
	}
	doc, _, err := reader.ParsePDFReader(bytes.NewReader(data), reader.Options{})
	if err != nil {
		return nil, fmt.Errorf("reading PDF document: %w", err)
	}
	pages := doc.Catalog.Pages.Flatten()
	changed := false

	if len(meta.Info) != 0 {
		setInfo(&doc.Trailer.Info, meta.Info, logger)
		changed = true
	}

	if len(meta.PageLabels) != 0 {
		if len(meta.PageLabels) != len(pages) {
			logger.Error("PDF metadata error: page labels count doesn't match",
				"pages", len(pages), "labels", len(meta.PageLabels))
		} else {
			ranges := labelRanges(meta.PageLabels)
			if optimizeLabels {
				ranges = optimizedLabelRanges(meta.PageLabels)
			}
			doc.Catalog.PageLabels = pageLabelsTree(ranges)
			changed = true
		}
	}

	if len(meta.Outline) != 0 {
		ob := outlineBuilder{pages: pages, openLevel: meta.OutlineOpenLevel, logger: logger}
		outline := &model.Outline{}
		outline.First = ob.items(meta.Outline, outline, 1)
		doc.Catalog.Outlines = outline
		doc.Catalog.PageMode = "UseOutlines"
		changed = true
	}

	if !changed {
		return data, nil
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf, nil); err != nil {
		return nil, fmt.Errorf("writing PDF document: %w", err)
	}
	return buf.Bytes(), nil
}

// setInfo updates the entries of info. Keys without an entry in the
// information dictionary are logged and ignored.
func setInfo(info *model.Info, entries map[string]string, logger *slog.Logger) {
	for k, v := range entries {
		switch k {
		case "Title":
			info.Title = v
		case "Author":
			info.Author = v
		case "Subject":
			info.Subject = v
		case "Keywords":
			info.Keywords = v
		case "Creator":
			info.Creator = v
		case "Producer":
			info.Producer = v
		default:
			logger.Warn("PDF metadata error: unsupported information entry", "key", k)
		}
	}
}

func pageLabelsTree(ranges []labelRange) *model.PageLabelsTree {
	tree := &model.PageLabelsTree{Nums: make([]model.NumToPageLabel, len(ranges))}
	for i, r := range ranges {
		label := model.PageLabel{S: model.Name(r.Style), P: r.Prefix, St: 1}
		if r.Start > 1 {
			label.St = r.Start
		}
		tree.Nums[i] = model.NumToPageLabel{Num: r.Page, PageLabel: label}
	}
	return tree
}

type outlineBuilder struct {
	pages     []*model.PageObject
	openLevel int
	logger    *slog.Logger
}

// items links the outline items of one level under parent, returning
// the first one.
func (b *outlineBuilder) items(items []OutlineItem, parent model.OutlineNode, level int) *model.OutlineItem {
	var first, prev *model.OutlineItem
	for _, item := range items {
		o := &model.OutlineItem{
			Title:  item.Title,
			Parent: parent,
			Open:   level <= b.openLevel,
		}
		if dest, ok := b.destination(item); ok {
			o.Dest = dest
		}
		if len(item.Children) != 0 {
			o.First = b.items(item.Children, o, level+1)
		}
		if prev == nil {
			first = o
		} else {
			prev.Next = o
		}
		prev = o
	}
	return first
}

func (b *outlineBuilder) destination(item OutlineItem) (model.Destination, bool) {
	if item.Page < 0 || item.Page >= len(b.pages) {
		b.logger.Error("PDF metadata error: outline item destination is out of the document",
			"title", item.Title, "page", item.Page+1, "pages", len(b.pages))
		return nil, false
	}
	dest := model.DestinationExplicitIntern{Page: b.pages[item.Page]}
	switch item.Type {
	case FitWidth:
		dest.Location = model.DestinationLocationFitDim{Name: "FitH", Dim: model.ObjFloat(item.Y)}
	case FitHeight:
		dest.Location = model.DestinationLocationFitDim{Name: "FitV", Dim: model.ObjFloat(item.X)}
	case FitRect:
		dest.Location = model.DestinationLocationFitR{
			Left: item.Left, Bottom: item.Bottom, Right: item.Right, Top: item.Top,
		}
	default:
		dest.Location = model.DestinationLocationXYZ{
			Left: model.ObjFloat(item.X), Top: model.ObjFloat(item.Y), Zoom: item.Zoom,
		}
	}
	return dest, true
}
