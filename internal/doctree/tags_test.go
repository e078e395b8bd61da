package doctree

import (
	"reflect"
	"testing"
)

func TestExtractTags(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{name: "start of string", text: "#alpha rest", want: []string{"alpha"}},
		{name: "after space", text: "see #beta and #gamma", want: []string{"beta", "gamma"}},
		{name: "after punctuation", text: "(#1) done", want: []string{"1"}},
		{name: "preceded by alnum", text: "x#1 issue#2", want: nil},
		{name: "bare hash", text: "# and #", want: nil},
		{name: "dash and underscore", text: "#q3-plan_v2.", want: []string{"q3-plan_v2"}},
		{name: "adjacent tags", text: "#one#two", want: []string{"one"}},
		{name: "unicode letters", text: "tema #café ok", want: []string{"café"}},
		{name: "case preserved", text: "#Urgent", want: []string{"Urgent"}},
		{name: "empty", text: "", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractTags(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractTags(%q) = %#v, want %#v", tc.text, got, tc.want)
			}
		})
	}
}

func TestTagContextInheritance(t *testing.T) {
	ctx := TagContext{}
	if ctx.Suppressed() {
		t.Fatalf("empty context should not suppress")
	}
	link := ctx.enter(KindLink)
	if !link.InLinkOrImage || !link.Suppressed() {
		t.Fatalf("link context should suppress: %+v", link)
	}
	nested := link.enter(KindEmph)
	if !nested.InLinkOrImage {
		t.Fatalf("flags must be inherited by descendants: %+v", nested)
	}
	if ctx.enter(KindParagraph).Suppressed() {
		t.Fatalf("paragraph should not set any flag")
	}
}
