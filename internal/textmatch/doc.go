// Package textmatch provides lexical matching utilities for pairing scene
// subjects with candidate clip metadata.
//
// The primary use cases are:
//   - Tokenizing subjects and filenames into comparable lowercase terms
//   - Strict whole-token, fuzzy all-words, and partial any-word matching
//   - Domain synonym lookups for species and landmark disambiguation
//   - Normalizing locators (paths, URLs, storage keys) into stable stems
//
// Tokenization lowercases text, folds diacritics, splits on non-alphanumeric
// characters, and filters stopwords and tokens shorter than 3 characters.
package textmatch
