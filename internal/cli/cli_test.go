package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/google/go-cmp/cmp"

	"github.com/jdigger/aem-grapher/pkg/descriptor"
	"github.com/jdigger/aem-grapher/pkg/errors"
	aemio "github.com/jdigger/aem-grapher/pkg/io"
	"github.com/jdigger/aem-grapher/pkg/jcr"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

const scenarioDOT = `digraph aem {
  "myapp/aComp1" -> "apps/myapp/aComp1/clientlibs";
  "myapp/aComp2" -> "apps/myapp/aComp2/clientlibs";
  "apps/myapp/aComp1/clientlibs" -> "etc/clientlibs/myapp/vendor/jquery";
  "apps/myapp/aComp2/clientlibs" -> "etc/clientlibs/myapp/vendor/jquery";
}
`

func scenarioNodes() []jcr.Node {
	return []jcr.Node{
		jcr.Component{ResourceType: "myapp/aComp1", Title: "A Comp 1", ClassName: "com.foo.Comp1", ComponentGroup: "Components"},
		jcr.Component{ResourceType: "myapp/aComp2", Title: "A Comp 2", ClassName: "com.foo.Comp2", ComponentGroup: "Components"},
		jcr.Clientlib{Path: "etc/clientlibs/myapp/vendor/jquery", Categories: []string{"myapp.jquery"}},
		jcr.Clientlib{Path: "apps/myapp/aComp1/clientlibs", Categories: []string{"myapp.aComp1"}, Dependencies: []string{"myapp.jquery"}},
		jcr.Clientlib{Path: "apps/myapp/aComp2/clientlibs", Categories: []string{"myapp.aComp2"}, Embed: []string{"myapp.jquery"}},
	}
}

func writePackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range scenarioNodes() {
		if _, err := descriptor.Write(filepath.Join(dir, "jcr_root"), n); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// isolateConfig points the XDG config lookup at an empty directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGraphCommand(t *testing.T) {
	isolateConfig(t)
	out, _, err := execute(t, "graph", writePackage(t))
	if err != nil {
		t.Fatal(err)
	}
	if out != scenarioDOT {
		t.Errorf("graph output =\n%s\nwant:\n%s", out, scenarioDOT)
	}
}

func TestGraphCommand_Flags(t *testing.T) {
	isolateConfig(t)
	dir := writePackage(t)
	dest := filepath.Join(t.TempDir(), "graph.dot")

	out, stderr, err := execute(t, "graph", dir, "--name", "site", "--detailed", "--validate",
		"--workers", "3", "--exclude", "etc/**", "-o", dest)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got %q", out)
	}
	if !strings.Contains(stderr, dest) {
		t.Errorf("stderr should name the output file:\n%s", stderr)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "digraph site {") {
		t.Errorf("graph name not applied:\n%s", got)
	}
	if strings.Contains(got, "jquery") {
		t.Errorf("excluded clientlib present:\n%s", got)
	}
	if !strings.Contains(got, "CLIENTLIB_FOR_COMPONENT") {
		t.Errorf("detailed labels missing:\n%s", got)
	}
}

func TestGraphCommand_Errors(t *testing.T) {
	isolateConfig(t)

	_, _, err := execute(t, "graph", t.TempDir())
	if !errors.Is(err, errors.ErrCodeJcrRootNotFound) {
		t.Errorf("graph without jcr_root error = %v", err)
	}

	txt := filepath.Join(t.TempDir(), "package.txt")
	if err := os.WriteFile(txt, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err = execute(t, "graph", txt)
	if !errors.Is(err, errors.ErrCodeNotAPackageFile) {
		t.Errorf("graph on a text file error = %v", err)
	}

	if _, _, err := execute(t, "graph"); err == nil {
		t.Error("graph without a path should fail")
	}
}

func TestConfigFile(t *testing.T) {
	home := isolateConfig(t)
	dir := writePackage(t)

	cfg := filepath.Join(home, appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfg), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg, []byte("name = \"fromconfig\"\nexclude = [\"etc/**\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	xdg.Reload()

	out, _, err := execute(t, "graph", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph fromconfig {") || strings.Contains(out, "jquery") {
		t.Errorf("config defaults not applied:\n%s", out)
	}

	// Flags win over the config file.
	out, _, err = execute(t, "graph", dir, "--name", "fromflag")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph fromflag {") {
		t.Errorf("flag did not override config:\n%s", out)
	}
}

func TestLoadConfig(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	opts, err := loadConfig(write("ok.toml", "name = \"x\"\ndetailed = true\nworkers = 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := pipeline.Options{Name: "x", Detailed: true, Workers: 4}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}

	if opts, err := loadConfig(""); err != nil || opts.Name != "" {
		t.Errorf("loadConfig(\"\") without a file = %+v, %v", opts, err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.toml")},
		{"syntax", write("bad.toml", "name = ")},
		{"unknown key", write("unknown.toml", "colour = \"red\"\n")},
		{"path key", write("path.toml", "path = \"x\"\n")},
		{"workers", write("workers.toml", "workers = -2\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(tt.path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("loadConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestMergeOptions(t *testing.T) {
	cfg := pipeline.Options{Name: "cfg", Detailed: true, Workers: 4, Exclude: []string{"etc/**"}}
	flags := pipeline.Options{Name: pipeline.DefaultName, Workers: pipeline.DefaultWorkers, Exclude: []string{"libs/**", "etc/**"}}

	tests := []struct {
		name    string
		changed []string
		want    pipeline.Options
	}{
		{
			name: "config wins over flag defaults",
			want: pipeline.Options{Path: "p", Name: "cfg", Detailed: true, Workers: 4, Exclude: []string{"etc/**", "libs/**"}},
		},
		{
			name:    "changed flags win",
			changed: []string{"name", "detailed", "workers"},
			want:    pipeline.Options{Path: "p", Name: pipeline.DefaultName, Workers: 1, Exclude: []string{"etc/**", "libs/**"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := func(name string) bool {
				for _, c := range tt.changed {
					if c == name {
						return true
					}
				}
				return false
			}
			got := mergeOptions(cfg, flags, changed, "p")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mergeOptions() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got := mergeOptions(pipeline.Options{}, flags, func(string) bool { return false }, "p")
	if got.Name != pipeline.DefaultName || got.Workers != pipeline.DefaultWorkers {
		t.Errorf("empty config should fall back to flag defaults: %+v", got)
	}
}

func TestNodesCommand(t *testing.T) {
	isolateConfig(t)
	dir := writePackage(t)

	out, _, err := execute(t, "nodes", dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"myapp/aComp1", "A Comp 2", "etc/clientlibs/myapp/vendor/jquery", "deps: myapp.jquery"} {
		if !strings.Contains(out, want) {
			t.Errorf("nodes table missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "nodes", dir, "--json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, `"kind":`) != 5 {
		t.Errorf("nodes --json should list 5 nodes:\n%s", out)
	}
}

func TestExportAndRender(t *testing.T) {
	isolateConfig(t)
	doc := filepath.Join(t.TempDir(), "scan.json")

	if _, _, err := execute(t, "export", writePackage(t), "-o", doc); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "render", doc)
	if err != nil {
		t.Fatal(err)
	}
	if out != scenarioDOT {
		t.Errorf("render output =\n%s\nwant:\n%s", out, scenarioDOT)
	}

	exported, err := aemio.ImportJSON(doc)
	if err != nil {
		t.Fatal(err)
	}
	out, _, err = execute(t, "render", doc, "--format", "json")
	if err != nil {
		t.Fatalf("render --format json: %v", err)
	}
	rendered, err := aemio.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("render --format json produced unreadable output: %v", err)
	}
	if rendered.ScanID != exported.ScanID {
		t.Errorf("scan ID = %s, want %s", rendered.ScanID, exported.ScanID)
	}
	if diff := cmp.Diff(associationIDs(exported.Associations), associationIDs(rendered.Associations)); diff != "" {
		t.Errorf("associations mismatch (-exported +rendered):\n%s", diff)
	}
	if len(rendered.Nodes) != len(exported.Nodes) {
		t.Errorf("nodes = %d, want %d", len(rendered.Nodes), len(exported.Nodes))
	}

	if _, _, err := execute(t, "render", doc, "--format", "svg"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("render --format svg error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if _, _, err := execute(t, "render", filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("render of a missing file error = %v", err)
	}
}

func associationIDs(as []jcr.Association) []string {
	ids := make([]string, len(as))
	for i, a := range as {
		ids[i] = a.ID()
	}
	return ids
}

func TestCompletionCommand(t *testing.T) {
	isolateConfig(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, _, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("completion %s does not mention %s", shell, appName)
		}
	}
	if _, _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion for an unknown shell should fail")
	}
}
