// Package subjects turns raw script lines into literal, filmable noun
// phrases suitable for stock-footage search. Extraction strategies are
// registered once at startup with an availability flag each; every
// strategy either returns phrases that pass the generic-term filter or
// returns nothing at all.
package subjects
