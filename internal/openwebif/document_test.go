package openwebif

import "testing"

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		tag       string
		wantValue string
		wantFound bool
	}{
		{
			name:      "simple leaf",
			data:      `<e2powerstate><e2instandby>true</e2instandby></e2powerstate>`,
			tag:       "e2instandby",
			wantValue: "true",
			wantFound: true,
		},
		{
			name:      "leaf with surrounding whitespace",
			data:      "<e2about><e2model>\n\tVUSOLO4K\n</e2model></e2about>",
			tag:       "e2model",
			wantValue: "VUSOLO4K",
			wantFound: true,
		},
		{
			name:      "missing tag",
			data:      `<e2about><e2model>VUSOLO4K</e2model></e2about>`,
			tag:       "e2webifversion",
			wantFound: false,
		},
		{
			name:      "empty element",
			data:      `<e2simplexmlresult><e2statetext></e2statetext></e2simplexmlresult>`,
			tag:       "e2statetext",
			wantValue: "",
			wantFound: true,
		},
		{
			name:      "self-closing element",
			data:      `<e2simplexmlresult><e2statetext/></e2simplexmlresult>`,
			tag:       "e2statetext",
			wantValue: "",
			wantFound: true,
		},
		{
			name: "first occurrence wins",
			data: `<e2servicelist>
				<e2service><e2servicereference>1:0:19:1</e2servicereference></e2service>
				<e2service><e2servicereference>1:0:19:2</e2servicereference></e2service>
			</e2servicelist>`,
			tag:       "e2servicereference",
			wantValue: "1:0:19:1",
			wantFound: true,
		},
		{
			name:      "nested container is not a leaf value",
			data:      `<e2abouts><e2about><e2model>VUDUO2</e2model></e2about></e2abouts>`,
			tag:       "e2model",
			wantValue: "VUDUO2",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseDocument() error = %v", err)
			}

			got, found := doc.Value(tt.tag)
			if found != tt.wantFound {
				t.Fatalf("Value(%q) found = %v, want %v", tt.tag, found, tt.wantFound)
			}
			if found && got != tt.wantValue {
				t.Errorf("Value(%q) = %q, want %q", tt.tag, got, tt.wantValue)
			}
		})
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	_, err := ParseDocument([]byte(`<e2about><e2model>unclosed`))
	if err == nil {
		t.Fatal("ParseDocument() expected error for malformed XML")
	}
}
