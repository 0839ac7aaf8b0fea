package item

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "bool", want: KindBool},
		{input: "num", want: KindNum},
		{input: "text", want: KindText},
		{input: "list", wantErr: true},
		{input: "", wantErr: true},
		{input: "Bool", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestItem_Set(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		value   any
		wantErr bool
	}{
		{name: "bool accepts 0", kind: KindBool, value: int64(0)},
		{name: "bool accepts 1", kind: KindBool, value: int64(1)},
		{name: "bool rejects 2", kind: KindBool, value: int64(2), wantErr: true},
		{name: "bool rejects string", kind: KindBool, value: "true", wantErr: true},
		{name: "num accepts int64", kind: KindNum, value: int64(42)},
		{name: "num accepts float64", kind: KindNum, value: 3.5},
		{name: "num rejects string", kind: KindNum, value: "42", wantErr: true},
		{name: "text accepts string", kind: KindText, value: "heute journal"},
		{name: "text rejects int", kind: KindText, value: int64(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := New("test", tt.kind)
			_, err := it.Set(tt.value, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrKindMismatch) {
					t.Errorf("Set() error = %v, want ErrKindMismatch", err)
				}
				return
			}

			got, has := it.Value()
			if !has {
				t.Fatal("Value() has = false after Set")
			}
			if got != tt.value {
				t.Errorf("Value() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestItem_Set_ChangeDetection(t *testing.T) {
	it := New("volume", KindNum)

	changed, err := it.Set(int64(25), "enigma2")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !changed {
		t.Error("first Set() changed = false, want true")
	}

	changed, err = it.Set(int64(25), "enigma2")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if changed {
		t.Error("identical Set() changed = true, want false")
	}

	changed, err = it.Set(int64(30), "enigma2")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !changed {
		t.Error("Set() with new value changed = false, want true")
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(New("standby", KindBool)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := reg.Register(New("standby", KindText))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateID", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(New("volume", KindNum)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	it, err := reg.Get("volume")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if it.ID() != "volume" {
		t.Errorf("Get().ID() = %q, want %q", it.ID(), "volume")
	}

	_, err = reg.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_List_PreservesOrder(t *testing.T) {
	reg := NewRegistry()
	ids := []string{"standby", "volume", "title"}
	kinds := []Kind{KindBool, KindNum, KindText}

	for i, id := range ids {
		if err := reg.Register(New(id, kinds[i])); err != nil {
			t.Fatalf("Register(%q) error = %v", id, err)
		}
	}

	list := reg.List()
	if len(list) != len(ids) {
		t.Fatalf("len(List()) = %d, want %d", len(list), len(ids))
	}
	for i, it := range list {
		if it.ID() != ids[i] {
			t.Errorf("List()[%d].ID() = %q, want %q", i, it.ID(), ids[i])
		}
	}
}

func TestRegistry_OnChange(t *testing.T) {
	reg := NewRegistry()
	it := New("standby", KindBool)
	if err := reg.Register(it); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var changes []Change
	reg.OnChange(func(c Change) {
		changes = append(changes, c)
	})

	if _, err := it.Set(int64(1), "enigma2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	// Identical write must not notify.
	if _, err := it.Set(int64(1), "enigma2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := it.Set(int64(0), "api"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}
	if changes[0].Value != int64(1) || changes[0].Source != "enigma2" {
		t.Errorf("changes[0] = %+v, want value 1 from enigma2", changes[0])
	}
	if changes[1].Value != int64(0) || changes[1].Source != "api" {
		t.Errorf("changes[1] = %+v, want value 0 from api", changes[1])
	}
}
