package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/enigma2-bridge/internal/item"
	"github.com/nerrad567/enigma2-bridge/internal/openwebif"
)

// noServiceReference marks the receiver's idle service slot; a
// subservices answer containing it means nothing is playing and no EPG
// lookup is attempted.
const noServiceReference = "1:0:0:0:0:0:0:0:0:0"

// unknownValue is the sentinel written to text items when the receiver
// reports no usable value.
const unknownValue = "-"

// fetchPage returns the raw response for an endpoint page, going through
// the response cache keyed by the page name.
func (b *Bridge) fetchPage(ctx context.Context, page openwebif.Page, bypass bool) ([]byte, error) {
	return b.cache.getOrFetch(string(page), func() ([]byte, error) {
		return b.device.client.Get(ctx, page, nil)
	}, bypass)
}

// resolve performs a generic single-field resolution for a binding.
//
// The endpoint page comes from the binding when set, otherwise from the
// data type's default page. The response element named after the data
// type is extracted and coerced into the binding's item.
func (b *Bridge) resolve(ctx context.Context, bd Binding, bypass bool) error {
	page := bd.page()

	body, err := b.fetchPage(ctx, page, bypass)
	if err != nil {
		return err
	}

	doc, err := openwebif.ParseDocument(body)
	if err != nil {
		return fmt.Errorf("parsing %s response: %w", page, err)
	}

	raw, ok := doc.Value(string(bd.DataType))
	if !ok {
		return fmt.Errorf("%w: %s on page %s", ErrAttributeUnavailable, bd.DataType, page)
	}

	return b.writeValue(bd, raw)
}

// writeValue coerces a raw attribute value by the item's declared kind and
// writes it into the binding's slot.
//
// Coercion rules:
//   - bool: "true" or "True" writes 1, any other text writes 0; an empty
//     element leaves the slot unchanged.
//   - num: integer parse first, then float parse; non-numeric text leaves
//     the slot unchanged so consumers keep the last good value.
//   - text: "N/A" and empty elements normalize to "-".
func (b *Bridge) writeValue(bd Binding, raw string) error {
	switch bd.Item.Kind() {
	case item.KindBool:
		if raw == "" {
			return nil
		}
		var v int64
		if raw == "true" || raw == "True" {
			v = 1
		}
		_, err := bd.Item.Set(v, SourceBridge)
		return err

	case item.KindNum:
		if raw == "" {
			return nil
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			_, err := bd.Item.Set(n, SourceBridge)
			return err
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			_, err := bd.Item.Set(f, SourceBridge)
			return err
		}
		return nil

	default:
		if raw == "" || raw == "N/A" {
			raw = unknownValue
		}
		_, err := bd.Item.Set(raw, SourceBridge)
		return err
	}
}

// resolveEvent resolves the current-event family for all subscribed
// event bindings in one pass.
//
// The active service reference comes from the subservices page (cached).
// The sentinel reference "N/A" and the idle service reference synthesize
// an event record with all fields "-" without touching the EPG; any other
// reference triggers exactly one epgservice request. EPG responses are
// never cached, they change independently of the cycle.
func (b *Bridge) resolveEvent(ctx context.Context, bypass bool) error {
	bindings := b.device.eventBindings()
	if len(bindings) == 0 {
		return nil
	}

	body, err := b.fetchPage(ctx, openwebif.PageSubservices, bypass)
	if err != nil {
		return err
	}

	doc, err := openwebif.ParseDocument(body)
	if err != nil {
		return fmt.Errorf("parsing subservices response: %w", err)
	}

	sRef, ok := doc.Value("e2servicereference")
	if !ok {
		return fmt.Errorf("%w: e2servicereference on page subservices", ErrAttributeUnavailable)
	}

	var event openwebif.Event
	if sRef == "N/A" || strings.Contains(sRef, noServiceReference) {
		event = openwebif.Event{
			Title:               unknownValue,
			Description:         unknownValue,
			DescriptionExtended: unknownValue,
		}
	} else {
		current, found, err := b.device.client.EPGEvent(ctx, sRef)
		if err != nil {
			return err
		}
		if found {
			event = current
		}
		event.Title = defaultDash(event.Title)
		event.Description = defaultDash(event.Description)
		event.DescriptionExtended = defaultDash(event.DescriptionExtended)
	}

	for _, bd := range bindings {
		var value string
		switch bd.DataType {
		case DataTypeServiceName:
			name, ok := doc.Value("e2servicename")
			if !ok || name == "" || name == "N/A" {
				name = unknownValue
			}
			value = name
		case DataTypeEventTitle:
			value = event.Title
		case DataTypeEventDescription:
			value = event.Description
		case DataTypeEventExtended:
			value = event.DescriptionExtended
		}

		if _, err := bd.Item.Set(value, SourceBridge); err != nil {
			b.logger.Warn("event binding write failed",
				"device", b.device.id,
				"data_type", string(bd.DataType),
				"error", err,
			)
		}
	}
	return nil
}

// resolveVolume resolves the receiver volume from the getcurrent page.
func (b *Bridge) resolveVolume(ctx context.Context, bd Binding, bypass bool) error {
	body, err := b.fetchPage(ctx, openwebif.PageGetCurrent, bypass)
	if err != nil {
		return err
	}

	doc, err := openwebif.ParseDocument(body)
	if err != nil {
		return fmt.Errorf("parsing getcurrent response: %w", err)
	}

	raw, ok := doc.Value("e2current")
	if !ok {
		return fmt.Errorf("%w: e2current on page getcurrent", ErrAttributeUnavailable)
	}

	return b.writeValue(bd, raw)
}

// defaultDash substitutes the unknown sentinel for empty values.
func defaultDash(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}
