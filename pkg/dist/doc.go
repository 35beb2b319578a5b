// Package dist maps declared distributions to the import names they provide.
//
// A requirement such as "pillow" is installed as a distribution called
// Pillow but imported as PIL. To decide whether an import is covered by a
// declared dependency, una collects every import name a declared
// distribution could plausibly be used under:
//
//   - the declared names themselves, with extras expanded
//   - top_level.txt of the installed distribution
//   - a curated alias table and user supplied aliases
//   - the distribution's own requirements (sub-dependencies)
//   - the reverse import → distribution mapping of the environment
//
// The environment is read from one or more site-packages directories into
// an [Index]. Scanning never fails on broken metadata; a distribution that
// cannot be read contributes nothing.
package dist
