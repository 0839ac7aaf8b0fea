package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/enigma2-bridge/internal/item"
)

// newBareBridge builds a bridge that never talks to a receiver, for unit
// tests of the coercion logic.
func newBareBridge(t *testing.T) *Bridge {
	t.Helper()

	b, err := New(Options{Device: NewDevice("test", nil)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestWriteValue_BoolCoercion(t *testing.T) {
	b := newBareBridge(t)

	tests := []struct {
		raw     string
		want    int64
		wantSet bool
	}{
		{"true", 1, true},
		{"True", 1, true},
		{"false", 0, true},
		{"False", 0, true},
		{"standby", 0, true},
		{"TRUE", 0, true}, // only the two exact spellings count as true
		{"", 0, false},    // empty element leaves the slot unchanged
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			it := item.New("flag", item.KindBool)
			if err := b.writeValue(Binding{Item: it}, tt.raw); err != nil {
				t.Fatalf("writeValue(%q) error = %v", tt.raw, err)
			}

			v, ok := it.Value()
			if ok != tt.wantSet {
				t.Fatalf("writeValue(%q) set = %v, want %v", tt.raw, ok, tt.wantSet)
			}
			if tt.wantSet && v != tt.want {
				t.Errorf("writeValue(%q) = %v, want %d", tt.raw, v, tt.want)
			}
		})
	}
}

func TestWriteValue_NumCoercion(t *testing.T) {
	b := newBareBridge(t)

	t.Run("integer", func(t *testing.T) {
		it := item.New("n", item.KindNum)
		if err := b.writeValue(Binding{Item: it}, "42"); err != nil {
			t.Fatalf("writeValue() error = %v", err)
		}
		if v, _ := it.Value(); v != int64(42) {
			t.Errorf("value = %v (%T), want int64 42", v, v)
		}
	})

	t.Run("float", func(t *testing.T) {
		it := item.New("n", item.KindNum)
		if err := b.writeValue(Binding{Item: it}, "3.5"); err != nil {
			t.Fatalf("writeValue() error = %v", err)
		}
		if v, _ := it.Value(); v != float64(3.5) {
			t.Errorf("value = %v (%T), want float64 3.5", v, v)
		}
	})

	t.Run("non-numeric retains stale value", func(t *testing.T) {
		it := item.New("n", item.KindNum)
		if _, err := it.Set(int64(7), SourceBridge); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := b.writeValue(Binding{Item: it}, "abc"); err != nil {
			t.Fatalf("writeValue() error = %v", err)
		}
		if v, _ := it.Value(); v != int64(7) {
			t.Errorf("value = %v, want stale 7", v)
		}
	})

	t.Run("empty element retains stale value", func(t *testing.T) {
		it := item.New("n", item.KindNum)
		if _, err := it.Set(int64(7), SourceBridge); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := b.writeValue(Binding{Item: it}, ""); err != nil {
			t.Fatalf("writeValue() error = %v", err)
		}
		if v, _ := it.Value(); v != int64(7) {
			t.Errorf("value = %v, want stale 7", v)
		}
	})
}

func TestWriteValue_TextCoercion(t *testing.T) {
	b := newBareBridge(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"Das Erste HD", "Das Erste HD"},
		{"N/A", "-"},
		{"", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			it := item.New("s", item.KindText)
			if err := b.writeValue(Binding{Item: it}, tt.raw); err != nil {
				t.Fatalf("writeValue(%q) error = %v", tt.raw, err)
			}
			if v, _ := it.Value(); v != tt.want {
				t.Errorf("writeValue(%q) = %v, want %q", tt.raw, v, tt.want)
			}
		})
	}
}

func TestResolveEvent_IdleServiceSkipsEPG(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"sentinel reference", `<e2servicelist><e2service><e2servicereference>N/A</e2servicereference><e2servicename>N/A</e2servicename></e2service></e2servicelist>`},
		{"idle reference", subservicesIdleXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeReceiver(t)
			f.set("/web/subservices", tt.body)
			f.set("/web/epgservice", epgServiceXML)

			title := item.New("event_title", item.KindText)
			desc := item.New("event_description", item.KindText)
			ext := item.New("event_extended", item.KindText)
			svcName := item.New("service_name", item.KindText)

			b := newTestBridge(t, f,
				Binding{DataType: DataTypeEventTitle, Item: title},
				Binding{DataType: DataTypeEventDescription, Item: desc},
				Binding{DataType: DataTypeEventExtended, Item: ext},
				Binding{DataType: DataTypeServiceName, Item: svcName},
			)

			if err := b.resolveEvent(context.Background(), false); err != nil {
				t.Fatalf("resolveEvent() error = %v", err)
			}

			for _, it := range []*item.Item{title, desc, ext, svcName} {
				if v, _ := it.Value(); v != "-" {
					t.Errorf("%s = %v, want %q", it.ID(), v, "-")
				}
			}
			if got := f.count("/web/epgservice"); got != 0 {
				t.Errorf("epgservice requests = %d, want 0 for idle service", got)
			}
		})
	}
}

func TestResolveEvent_ActiveServiceQueriesEPGOnce(t *testing.T) {
	f := newFakeReceiver(t)
	f.set("/web/subservices", subservicesXML)
	f.set("/web/epgservice", epgServiceXML)

	title := item.New("event_title", item.KindText)
	desc := item.New("event_description", item.KindText)
	ext := item.New("event_extended", item.KindText)
	svcName := item.New("service_name", item.KindText)

	b := newTestBridge(t, f,
		Binding{DataType: DataTypeEventTitle, Item: title},
		Binding{DataType: DataTypeEventDescription, Item: desc},
		Binding{DataType: DataTypeEventExtended, Item: ext},
		Binding{DataType: DataTypeServiceName, Item: svcName},
	)

	if err := b.resolveEvent(context.Background(), false); err != nil {
		t.Fatalf("resolveEvent() error = %v", err)
	}

	if got := f.count("/web/epgservice"); got != 1 {
		t.Errorf("epgservice requests = %d, want exactly 1", got)
	}
	if v, _ := title.Value(); v != "Tagesschau" {
		t.Errorf("event_title = %v, want %q", v, "Tagesschau")
	}
	if v, _ := desc.Value(); v != "Evening news" {
		t.Errorf("event_description = %v, want %q", v, "Evening news")
	}
	if v, _ := ext.Value(); v != "News of the day in detail." {
		t.Errorf("event_extended = %v, want extended text", v)
	}
	if v, _ := svcName.Value(); v != "Das Erste HD" {
		t.Errorf("service_name = %v, want %q", v, "Das Erste HD")
	}
}

func TestResolveEvent_EmptyEPGListDefaultsFields(t *testing.T) {
	f := newFakeReceiver(t)
	f.set("/web/subservices", subservicesXML)
	f.set("/web/epgservice", `<e2eventlist></e2eventlist>`)

	title := item.New("event_title", item.KindText)
	b := newTestBridge(t, f, Binding{DataType: DataTypeEventTitle, Item: title})

	if err := b.resolveEvent(context.Background(), false); err != nil {
		t.Fatalf("resolveEvent() error = %v", err)
	}
	if v, _ := title.Value(); v != "-" {
		t.Errorf("event_title = %v, want %q", v, "-")
	}
}

func TestResolve_MissingAttribute(t *testing.T) {
	f := newFakeReceiver(t)
	f.set("/web/about", `<e2abouts><e2about><e2model>dm900</e2model></e2about></e2abouts>`)

	lanMAC := item.New("lan_mac", item.KindText)
	b := newTestBridge(t, f, Binding{DataType: DataTypeLANMAC, Item: lanMAC})

	err := b.resolve(context.Background(), Binding{DataType: DataTypeLANMAC, Item: lanMAC}, false)
	if !errors.Is(err, ErrAttributeUnavailable) {
		t.Fatalf("resolve() error = %v, want ErrAttributeUnavailable", err)
	}
	if _, ok := lanMAC.Value(); ok {
		t.Error("missing attribute wrote a value, want slot unchanged")
	}
}

func TestResolveVolume(t *testing.T) {
	f := newFakeReceiver(t)
	f.set("/web/getcurrent", getCurrentXML)

	volume := item.New("volume", item.KindNum)
	binding := Binding{DataType: DataTypeVolume, Item: volume}
	b := newTestBridge(t, f, binding)

	if err := b.resolveVolume(context.Background(), binding, false); err != nil {
		t.Fatalf("resolveVolume() error = %v", err)
	}
	if v, _ := volume.Value(); v != int64(35) {
		t.Errorf("volume = %v, want 35", v)
	}
}
