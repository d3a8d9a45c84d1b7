package cli

import "testing"

func TestUnitNameFromALIPath(t *testing.T) {
	cases := map[string]string{
		"text_io.ali":         "Text_io",
		"outer-inner.ali":     "Outer.Inner",
		"/tmp/dir/hello.ali":  "Hello",
		"outer-inner-widget.ali": "Outer.Inner.Widget",
	}

	for path, want := range cases {
		got := unitNameFromALIPath(path).String()
		if got != want {
			t.Errorf("unitNameFromALIPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestWrapListEmpty(t *testing.T) {
	got := wrapList("withs", nil)
	if got != "withs: (none)" {
		t.Errorf("wrapList with no items = %q", got)
	}
}

func TestWrapListSingleLineWhenShort(t *testing.T) {
	got := wrapList("withs", []string{"A", "B"})
	want := "withs: A, B"

	if got != want {
		t.Errorf("wrapList = %q, want %q", got, want)
	}
}
