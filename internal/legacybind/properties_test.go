package legacybind

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var reExportRE = regexp.MustCompile(`export \{ (\S+) as (\S+) \} from '([^']+)';`)

// buildWebUtils generates a webUtils-like source with n bindings, some of
// them sharing a module, interleaved with unrelated statements.
func buildWebUtils(n int) (string, []string) {
	var b strings.Builder
	var unrelated []string
	b.WriteString("'use strict';\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "export let binding%d;\n", i)
	}
	for i := 0; i < n; i++ {
		stmt := fmt.Sprintf("const unrelated%d = %d;", i, i)
		unrelated = append(unrelated, stmt)
		b.WriteString(stmt + "\n")
		member := ".default"
		if i%2 == 1 {
			member = fmt.Sprintf(".member%d", i%3)
		}
		fmt.Fprintf(&b, "try {\n  binding%d = require('pkg/mod%d')%s;\n} catch (e) {}\n", i, i%3, member)
	}
	return b.String(), unrelated
}

func TestTransformProperties(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("%d bindings", n), func(t *testing.T) {
			input, unrelated := buildWebUtils(n)
			out := Transform(input, input, webUtilsPath, true)

			if declarationRE.MatchString(out) {
				t.Fatalf("declarations remain:\n%s", out)
			}
			if strings.Contains(out, "require(") {
				t.Fatalf("guarded require remains:\n%s", out)
			}

			matches := reExportRE.FindAllStringSubmatch(out, -1)
			if len(matches) != n {
				t.Fatalf("expected %d re-exports, got %d:\n%s", n, len(matches), out)
			}
			seen := make(map[string]int)
			for _, m := range matches {
				seen[m[2]]++
			}
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("binding%d", i)
				if seen[name] != 1 {
					t.Errorf("%s exported %d times", name, seen[name])
				}
			}

			// unrelated statements keep their relative order
			last := -1
			for _, stmt := range unrelated {
				idx := strings.Index(out, stmt)
				if idx <= last {
					t.Fatalf("statement %q out of order", stmt)
				}
				last = idx
			}
		})
	}
}

func TestTransformIdentityWhenGateFails(t *testing.T) {
	input, _ := buildWebUtils(4)
	cases := []struct {
		id         string
		production bool
	}{
		{webUtilsPath, false},
		{"src/webUtils.web.js", true},
		{"node_modules/react-native-reanimated/lib/module/index.js", true},
	}
	for _, c := range cases {
		if got := Transform(input, input, c.id, c.production); got != input {
			t.Errorf("Transform(%q, %v) changed the input", c.id, c.production)
		}
	}
}

func TestTransformIsDeterministicAcrossGoroutines(t *testing.T) {
	input, _ := buildWebUtils(8)
	want := Transform(input, input, webUtilsPath, true)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Transform(input, input, webUtilsPath, true); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent Transform diverged:\n%s", got)
	}
}

func TestAnalyzeReportsUnresolved(t *testing.T) {
	a := Analyze("export let a;\nexport let b;\ntry { a = require('m').x; } catch (e) {}")
	if got := a.Declared(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Declared = %v", got)
	}
	if got := a.Unresolved(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("Unresolved = %v", got)
	}
	if a.Groups.Bindings() != 1 {
		t.Fatalf("Bindings = %d", a.Groups.Bindings())
	}
}

func TestEligible(t *testing.T) {
	full := "export let a; try {} catch (e) {} require"
	if !Eligible(webUtilsPath, full, true) {
		t.Fatal("expected eligible")
	}
	if Eligible(webUtilsPath, full, false) {
		t.Fatal("development builds are never eligible")
	}
	if !MatchesFile(`node_modules\react-native-reanimated\src\ReanimatedModule\js-reanimated\webUtils.ts`) {
		t.Fatal("expected windows path to match")
	}
	if MatchesFile("node_modules/react-native-reanimated/src/index.ts") {
		t.Fatal("unexpected match")
	}
}
