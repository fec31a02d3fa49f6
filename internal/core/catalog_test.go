package core

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestNewCohortKey(t *testing.T) {
	tests := []struct {
		name                       string
		year, department, semester string
		want                       CohortKey
		wantErr                    bool
	}{
		{name: "plain", year: "TE", department: "CS", semester: "I", want: CohortKey{"TE", "CS", "I"}},
		{name: "trimmed", year: " BE ", department: "IT\t", semester: " II", want: CohortKey{"BE", "IT", "II"}},
		{name: "empty year", year: "", department: "CS", semester: "I", wantErr: true},
		{name: "blank semester", year: "TE", department: "CS", semester: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCohortKey(tt.year, tt.department, tt.semester)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCohortKeyString(t *testing.T) {
	tests := []struct {
		key           CohortKey
		str, id, file string
	}{
		{CohortKey{"TE", "CS", "I"}, "TE_CS_I", "TE_CS_I", "TE_CS_I.csv"},
		{CohortKey{"2024", "COMP_SCI", "I"}, "2024_COMP_SCI_I", "2024_COMP%5FSCI_I", "2024_COMP%5FSCI_I.csv"},
		{CohortKey{"TE", "CS/IT", "I"}, "TE_CS/IT_I", "TE_CS%2FIT_I", "TE_CS%2FIT_I.csv"},
		{CohortKey{"TE", `CS\IT`, "100%"}, `TE_CS\IT_100%`, "TE_CS%5CIT_100%25", "TE_CS%5CIT_100%25.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.key.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if got := tt.key.ID(); got != tt.id {
				t.Errorf("ID() = %q, want %q", got, tt.id)
			}
			if got := tt.key.FileName(); got != tt.file {
				t.Errorf("FileName() = %q, want %q", got, tt.file)
			}
			parsed, err := ParseCohortKey(tt.key.ID())
			if err != nil || parsed != tt.key {
				t.Errorf("ParseCohortKey(%q) = %+v, %v", tt.key.ID(), parsed, err)
			}
		})
	}

	for _, bad := range []string{"", "TE_CS", "TE_CS_I_X", "TE__I", "TE_CS%ZZ_I"} {
		if _, err := ParseCohortKey(bad); err == nil {
			t.Errorf("ParseCohortKey(%q) should fail", bad)
		}
	}
}

func TestCohortKeyID_Distinct(t *testing.T) {
	keys := []CohortKey{
		{"A_B", "C", "D"},
		{"A", "B_C", "D"},
		{"A", "B", "C_D"},
		{"A%5FB", "C", "D"},
		{"A/B", "C", "D"},
	}
	seen := make(map[string]CohortKey)
	for _, k := range keys {
		if prev, dup := seen[k.ID()]; dup {
			t.Errorf("%+v and %+v share ID %q", prev, k, k.ID())
		}
		seen[k.ID()] = k
		if prev, dup := seen[k.FileName()]; dup {
			t.Errorf("%+v and %+v share file name %q", prev, k, k.FileName())
		}
		seen[k.FileName()] = k
	}
}

func TestCatalog_PutGet(t *testing.T) {
	c := NewCatalog()
	key := CohortKey{"TE", "CS", "I"}

	if _, err := c.Get(key); !IsNotFound(err) {
		t.Fatalf("Get on empty catalog err = %v, want not found", err)
	}

	first := mustParse(t, sampleSheet)
	c.Put(key, first)
	got, err := c.Get(key)
	if err != nil || got != first {
		t.Fatalf("Get = %p, %v; want %p", got, err, first)
	}

	second := mustParse(t, "Name,Grade,Result\nZed,99,PASS\n")
	c.Put(key, second)
	got, _ = c.Get(key)
	if got != second {
		t.Error("Put did not replace the earlier table")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCatalog_KeysOrder(t *testing.T) {
	c := NewCatalog()
	a := CohortKey{"FE", "CS", "I"}
	b := CohortKey{"SE", "IT", "II"}
	d := CohortKey{"TE", "CS", "I"}
	tbl := mustParse(t, sampleSheet)

	c.Put(a, tbl)
	c.Put(b, tbl)
	c.Put(d, tbl)
	c.Put(a, tbl) // re-upload keeps position

	var got []CohortKey
	for k := range c.Keys() {
		got = append(got, k)
	}
	if want := []CohortKey{a, b, d}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestCatalog_KeysRestartable(t *testing.T) {
	c := NewCatalog()
	tbl := mustParse(t, sampleSheet)
	c.Put(CohortKey{"FE", "CS", "I"}, tbl)
	c.Put(CohortKey{"SE", "CS", "I"}, tbl)

	seq := c.Keys()

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 2 || second != 2 {
		t.Errorf("iterations saw %d then %d keys, want 2 and 2", first, second)
	}

	// A later Put is visible to the next iteration of the same sequence.
	c.Put(CohortKey{"TE", "CS", "I"}, tbl)
	if n := count(); n != 3 {
		t.Errorf("after Put, iteration saw %d keys, want 3", n)
	}

	// Early break is honoured.
	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 {
		t.Errorf("break after first key, saw %d", n)
	}
}

func TestCatalog_Concurrent(t *testing.T) {
	c := NewCatalog()
	tbl := mustParse(t, sampleSheet)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Put(CohortKey{"Y", fmt.Sprintf("D%d", i%5), "S"}, tbl)
		}(i)
		go func() {
			defer wg.Done()
			for k := range c.Keys() {
				_, _ = c.Get(k)
			}
		}()
	}
	wg.Wait()

	if c.Len() != 5 {
		t.Errorf("Len = %d, want 5", c.Len())
	}
}
