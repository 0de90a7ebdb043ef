package legacybind

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const webUtilsPath = "node_modules/react-native-reanimated/lib/module/ReanimatedModule/js-reanimated/webUtils.web.js"

func TestTransformIneligibleReturnsInput(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		id         string
		production bool
	}{
		{"development build", "export let foo;", "test.js", false},
		{"not a reanimated file", "export let foo;", "some/other/file.js", true},
		{"not the webUtils file", "export let foo;", "node_modules/react-native-reanimated/some/other/file.js", true},
		{"no export let", `export const foo = "bar";`, webUtilsPath, true},
		{"no try", "export let foo;", webUtilsPath, true},
		{"no require", "export let foo;\ntry { foo = \"bar\"; } catch (e) {}", webUtilsPath, true},
		{
			name:       "dev mode with the full pattern",
			code:       "export let foo;\ntry {\n  foo = require('m').default;\n} catch (e) {}",
			id:         webUtilsPath,
			production: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(tt.code, tt.code, tt.id, tt.production)
			if got != tt.code {
				t.Fatalf("Transform changed ineligible input:\n%s", cmp.Diff(tt.code, got))
			}
		})
	}
}

func TestTransformNoDeclarationsReturnsInput(t *testing.T) {
	// the gate sees "export let" but no statement matches the declaration form
	code := "export let foo = 1;\ntry {\n  x = require('m');\n} catch (e) {}"
	if got := Transform(code, code, webUtilsPath, true); got != code {
		t.Fatalf("Transform changed input:\n%s", cmp.Diff(code, got))
	}
}

func TestTransformRewritesWebUtils(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "single declaration with default import",
			input: `'use strict';
export let createReactDOMStyle;
try {
  createReactDOMStyle = require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
} catch (e) {}`,
			expected: `'use strict';


export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';
`,
		},
		{
			name: "single declaration with named import",
			input: `export let createTransformValue;
try {
  createTransformValue = require('react-native-web/dist/exports/StyleSheet/preprocess').createTransformValue;
} catch (e) {}`,
			expected: `

export { createTransformValue as createTransformValue } from 'react-native-web/dist/exports/StyleSheet/preprocess';
`,
		},
		{
			name: "multiple declarations with mixed imports",
			input: `'use strict';
export let createReactDOMStyle;
export let createTransformValue;
export let createTextShadowValue;
try {
  createReactDOMStyle = require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
} catch (e) {}
try {
  createTransformValue = require('react-native-web/dist/exports/StyleSheet/preprocess').createTransformValue;
} catch (e) {}
try {
  createTextShadowValue = require('react-native-web/dist/exports/StyleSheet/preprocess').createTextShadowValue;
} catch (e) {}`,
			expected: `'use strict';






export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';
export { createTransformValue as createTransformValue } from 'react-native-web/dist/exports/StyleSheet/preprocess';
export { createTextShadowValue as createTextShadowValue } from 'react-native-web/dist/exports/StyleSheet/preprocess';
`,
		},
		{
			name: "multiline assignment with comment",
			input: `export let createReactDOMStyle;
try {
  createReactDOMStyle =
    // eslint-disable-next-line @typescript-eslint/no-var-requires
    require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
} catch (e) {}`,
			expected: `

export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';
`,
		},
		{
			name: "other code is preserved",
			input: `'use strict';
// Some comment
const someOtherCode = 'hello';
export let createReactDOMStyle;
function doSomething() {
  return 42;
}
try {
  createReactDOMStyle = require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
} catch (e) {}
// More code
console.log('test');`,
			expected: `'use strict';
// Some comment
const someOtherCode = 'hello';

function doSomething() {
  return 42;
}

// More code
console.log('test');
export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';
`,
		},
		{
			name: "declaration without a matching require",
			input: `export let createReactDOMStyle;
export let unmatchedExport;
try {
  createReactDOMStyle = require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
} catch (e) {}`,
			expected: `


export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';
`,
		},
		{
			name: "single and double quotes",
			input: `export let singleQuote;
export let doubleQuote;
try {
  singleQuote = require('react-native-web/dist/module1').default;
} catch (e) {}
try {
  doubleQuote = require("react-native-web/dist/module2").default;
} catch (e) {}`,
			expected: `



export { default as singleQuote } from 'react-native-web/dist/module1';
export { default as doubleQuote } from 'react-native-web/dist/module2';
`,
		},
		{
			name: "block comment between assignment and require",
			input: `export let style;
try {
  style = /* web only */ require('rnw/style').create;
} catch (e) {}`,
			expected: `

export { create as style } from 'rnw/style';
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(tt.input, tt.input, webUtilsPath, true)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Fatalf("Transform mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransformThreeBindingsKeepsUnrelatedStatements(t *testing.T) {
	input := `export let a;
export let b;
export let c;
const keepOne = 1;
try {
  a = require('mod-a').default;
} catch (e) {}
try {
  b = require('mod-b').first;
} catch (e) {}
try {
  c = require('mod-c').second;
} catch (e) {}
const keepTwo = 2;`

	got := Transform(input, input, webUtilsPath, true)
	want := "\n\n\nconst keepOne = 1;\n\n\n\nconst keepTwo = 2;\n" +
		"export { default as a } from 'mod-a';\n" +
		"export { first as b } from 'mod-b';\n" +
		"export { second as c } from 'mod-c';\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Transform mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformNestedTryIsBestEffort(t *testing.T) {
	input := `export let createReactDOMStyle;
try {
  try {
    createReactDOMStyle = require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
  } catch (innerError) {
    console.log('inner error');
  }
} catch (e) {}`

	got := Transform(input, input, webUtilsPath, true)
	if !strings.Contains(got, "export { default as createReactDOMStyle }") {
		t.Fatalf("missing re-export:\n%s", got)
	}
	if strings.Contains(got, "export let createReactDOMStyle") {
		t.Fatalf("declaration survived:\n%s", got)
	}
	// only the inner flat block is erased; the outer try shell stays behind
	if !strings.Contains(got, "catch (e) {}") {
		t.Fatalf("expected the outer catch to remain:\n%s", got)
	}
}

func TestTransformUsesOriginalForResolution(t *testing.T) {
	original := `export let foo;
try {
  foo = require('module-a').default;
} catch (e) {}`
	// an earlier stage already rewrote candidate; the require is gone there
	candidate := "export let foo;\n/* stripped */\n"

	got := Transform(candidate, original, webUtilsPath, true)
	want := "\n/* stripped */\n\nexport { default as foo } from 'module-a';\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Transform mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformNothingResolvedStillErases(t *testing.T) {
	input := "export let orphan;\nconst x = typeof require;\ntry { run(); } catch (e) {}\n"
	got := Transform(input, input, webUtilsPath, true)
	want := "\nconst x = typeof require;\ntry { run(); } catch (e) {}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Transform mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformWindowsFileID(t *testing.T) {
	id := `C:\app\node_modules\react-native-reanimated\lib\module\ReanimatedModule\js-reanimated\webUtils.web.js`
	input := "export let foo;\ntry {\n  foo = require('m').bar;\n} catch (e) {}"
	got := Transform(input, input, id, true)
	if !strings.HasSuffix(got, "export { bar as foo } from 'm';\n") {
		t.Fatalf("expected rewrite for windows id, got:\n%s", got)
	}
}
