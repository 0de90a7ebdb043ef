// Package legacybind rewrites the "export let + guarded require" interop shape
// found in react-native-reanimated's web utilities into static re-exports.
//
// The input looks like
//
//	export let createReactDOMStyle;
//	try {
//	  createReactDOMStyle =
//	    // eslint-disable-next-line
//	    require('react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle').default;
//	} catch (e) {}
//
// and the rewrite removes the declaration and the guarded block, then appends
//
//	export { default as createReactDOMStyle } from 'react-native-web/dist/exports/StyleSheet/compiler/createReactDOMStyle';
//
// Matching is textual. Only flat try/catch blocks are erased; a block nested
// inside another try keeps its outer shell. Anything the matchers do not
// recognise is left as it was. Every function in the package is pure and safe
// for concurrent use.
package legacybind
