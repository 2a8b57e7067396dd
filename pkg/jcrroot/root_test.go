package jcrroot

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jdigger/aem-grapher/pkg/descriptor"
	"github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/jcr"
)

func packageNodes() []jcr.Node {
	return []jcr.Node{
		jcr.Component{ResourceType: "myapp/aComp1", Title: "A Comp 1", ClassName: "com.foo.Comp1", ComponentGroup: "Components"},
		jcr.Component{ResourceType: "myapp/aComp2", Title: "A Comp 2", ClassName: "com.foo.Comp2", ComponentGroup: "Components"},
		jcr.Clientlib{Path: "etc/clientlibs/myapp/vendor/jquery", Categories: []string{"myapp.jquery"}},
		jcr.Clientlib{Path: "apps/myapp/aComp1/clientlibs", Categories: []string{"myapp.aComp1"}, Dependencies: []string{"myapp.jquery"}},
		jcr.Clientlib{Path: "apps/myapp/aComp2/clientlibs", Categories: []string{"myapp.aComp2"}, Embed: []string{"myapp.jquery"}},
	}
}

// writeDir lays out nodes under dir/jcr_root along with a few files that
// are not descriptors.
func writeDir(t *testing.T, dir string, nodes []jcr.Node) string {
	t.Helper()
	root := filepath.Join(dir, DirName)
	for _, n := range nodes {
		if _, err := descriptor.Write(root, n); err != nil {
			t.Fatal(err)
		}
	}
	extra := map[string]string{
		"apps/myapp/aComp1/aComp1.html":       "<div></div>",
		"apps/myapp/aComp1/clientlibs/js.txt": "main.js",
		"content/myapp/en/.content.xml":       `<jcr:root xmlns:jcr="http://www.jcp.org/jcr/1.0" jcr:primaryType="cq:Page"/>`,
	}
	for name, data := range extra {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// writeZip builds a package archive with the nodes under jcr_root and a
// META-INF entry beside it.
func writeZip(t *testing.T, nodes []jcr.Node) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "package.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	add("META-INF/vault/filter.xml", []byte("<workspaceFilter/>"))
	for _, n := range nodes {
		file, err := descriptor.File(n)
		if err != nil {
			t.Fatal(err)
		}
		data, err := descriptor.Marshal(n)
		if err != nil {
			t.Fatal(err)
		}
		add(DirName+"/"+file, data)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func assertNodes(t *testing.T, got []jcr.Node) {
	t.Helper()
	want := packageNodes()
	jcr.SortNodes(want)
	jcr.SortNodes(got)
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !jcr.Equal(want[i], got[i]) {
			t.Errorf("node %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOpen_Zip(t *testing.T) {
	root, err := Open(writeZip(t, packageNodes()))
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close()

	nodes, err := root.Nodes(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	assertNodes(t, nodes)

	assocs, err := jcr.Infer(nodes)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[jcr.AssociationType]int{}
	for _, a := range assocs {
		counts[a.Type]++
	}
	want := map[jcr.AssociationType]int{
		jcr.ClientlibForComponent: 2,
		jcr.ClientlibDependency:   1,
		jcr.ClientlibEmbed:        1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("association counts mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	writeDir(t, dir, packageNodes())

	// The package directory and any path inside jcr_root resolve the same.
	for _, p := range []string{
		dir,
		filepath.Join(dir, DirName),
		filepath.Join(dir, DirName, "apps", "myapp"),
	} {
		root, err := Open(p)
		if err != nil {
			t.Fatalf("Open(%s): %v", p, err)
		}
		nodes, err := root.Nodes(context.Background(), descriptor.NewExtractor(nil))
		if err != nil {
			t.Fatal(err)
		}
		assertNodes(t, nodes)
		if err := root.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	bogus := filepath.Join(dir, "bogus.zip")
	if err := os.WriteFile(bogus, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"regular file", txt, errors.ErrCodeNotAPackageFile},
		{"corrupt zip", bogus, errors.ErrCodeNotAPackageFile},
		{"missing", filepath.Join(dir, "missing"), errors.ErrCodeInvalidPath},
		{"no jcr_root", dir, errors.ErrCodeJcrRootNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("Open() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOpenPackageFile_NoJcrRoot(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("META-INF/MANIFEST.MF")
	w.Write([]byte("Manifest-Version: 1.0\n"))
	zw.Close()
	f.Close()

	if _, err := OpenPackageFile(name); !errors.Is(err, errors.ErrCodeJcrRootNotFound) {
		t.Errorf("OpenPackageFile() error = %v, want JCR_ROOT_NOT_FOUND", err)
	}
}

func TestFindRoot(t *testing.T) {
	dir := t.TempDir()
	deep := filepath.Join(dir, "pkg", DirName, "apps", "myapp", "comp")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "pkg", DirName)

	for _, p := range []string{deep, filepath.Join(dir, "pkg"), want} {
		got, err := FindRoot(p)
		if err != nil {
			t.Fatalf("FindRoot(%s): %v", p, err)
		}
		if got != want {
			t.Errorf("FindRoot(%s) = %s, want %s", p, got, want)
		}
	}

	if _, err := FindRoot(dir); !errors.Is(err, errors.ErrCodeJcrRootNotFound) {
		t.Errorf("FindRoot() outside a package error = %v", err)
	}
}

func TestNodes_Exclude(t *testing.T) {
	dir := t.TempDir()
	rootDir := writeDir(t, dir, packageNodes())

	root, err := Open(rootDir)
	if err != nil {
		t.Fatal(err)
	}
	root.Exclude = []string{"etc/**", "apps/myapp/aComp2"}
	if err := ValidateExclude(root.Exclude); err != nil {
		t.Fatal(err)
	}

	nodes, err := root.Nodes(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, n := range nodes {
		keys = append(keys, n.Key())
	}
	sort.Strings(keys)
	want := []string{"apps/myapp/aComp1/clientlibs", "myapp/aComp1"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("Nodes() with excludes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateExclude(t *testing.T) {
	if err := ValidateExclude([]string{"apps/**", "*.xml"}); err != nil {
		t.Errorf("ValidateExclude() = %v", err)
	}
	if err := ValidateExclude([]string{"apps/[z-"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("ValidateExclude(bad) = %v, want INVALID_CONFIG", err)
	}
}

func TestNodes_Cancelled(t *testing.T) {
	dir := t.TempDir()
	root, err := Open(writeDir(t, dir, packageNodes()))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := root.Nodes(ctx, nil); err == nil {
		t.Error("Nodes() with a cancelled context should fail")
	}
}
