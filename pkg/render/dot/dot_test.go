package dot

import (
	"strings"
	"testing"

	"github.com/jdigger/aem-grapher/pkg/jcr"
)

func scenario(t *testing.T) []jcr.Association {
	t.Helper()
	assocs, err := jcr.Infer([]jcr.Node{
		jcr.Component{ResourceType: "myapp/aComp1", Title: "A Comp 1"},
		jcr.Component{ResourceType: "myapp/aComp2", Title: "A Comp 2"},
		jcr.Clientlib{Path: "etc/clientlibs/myapp/vendor/jquery", Categories: []string{"myapp.jquery"}},
		jcr.Clientlib{Path: "apps/myapp/aComp1/clientlibs", Categories: []string{"myapp.aComp1"}, Dependencies: []string{"myapp.jquery"}},
		jcr.Clientlib{Path: "apps/myapp/aComp2/clientlibs", Categories: []string{"myapp.aComp2"}, Embed: []string{"myapp.jquery"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return assocs
}

func TestToDOT(t *testing.T) {
	got := ToDOT(scenario(t), Options{})
	want := `digraph aem {
  "myapp/aComp1" -> "apps/myapp/aComp1/clientlibs";
  "myapp/aComp2" -> "apps/myapp/aComp2/clientlibs";
  "apps/myapp/aComp1/clientlibs" -> "etc/clientlibs/myapp/vendor/jquery";
  "apps/myapp/aComp2/clientlibs" -> "etc/clientlibs/myapp/vendor/jquery";
}
`
	if got != want {
		t.Errorf("ToDOT() =\n%s\nwant:\n%s", got, want)
	}
}

func TestToDOT_Empty(t *testing.T) {
	if got := ToDOT(nil, Options{}); got != "digraph aem {\n}\n" {
		t.Errorf("ToDOT(nil) = %q", got)
	}
}

func TestToDOT_Name(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "digraph aem {"},
		{"mypackage", "digraph mypackage {"},
		{"my-package 1.0", `digraph "my-package 1.0" {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDOT(nil, Options{Name: tt.name})
			if !strings.HasPrefix(got, tt.want+"\n") {
				t.Errorf("ToDOT() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestToDOT_Detailed(t *testing.T) {
	got := ToDOT(scenario(t), Options{Detailed: true})

	for _, want := range []string{
		`"myapp/aComp1" [shape=box, label="myapp/aComp1\nA Comp 1"];`,
		`"etc/clientlibs/myapp/vendor/jquery" [shape=ellipse, label="etc/clientlibs/myapp/vendor/jquery\n[myapp.jquery]"];`,
		`"myapp/aComp1" -> "apps/myapp/aComp1/clientlibs" [label="CLIENTLIB_FOR_COMPONENT\nmyapp/aComp1"];`,
		`"apps/myapp/aComp1/clientlibs" -> "etc/clientlibs/myapp/vendor/jquery" [label="CLIENTLIB_DEPENDENCY"];`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToDOT(detailed) missing %s\n%s", want, got)
		}
	}
	if n := strings.Count(got, "shape="); n != 5 {
		t.Errorf("declared %d nodes, want 5", n)
	}
}

func TestValidate(t *testing.T) {
	assocs := scenario(t)
	for _, opts := range []Options{{}, {Detailed: true}, {Name: "my package"}} {
		if err := Validate(ToDOT(assocs, opts)); err != nil {
			t.Errorf("Validate(%+v) = %v", opts, err)
		}
	}
	if err := Validate("digraph aem { \"a\" -> ; "); err == nil {
		t.Error("Validate() accepted malformed DOT")
	}
}
