// Package pipeline ties column descriptors, the dialect registry and decimal conversion together
// for one connector instance.
//
// A schema notification (Table) is resolved once by Pipeline.Map into a Mapping, which renders
// the destination DDL and converts value notifications (Row) according to the configured
// decimal handling mode. Mapping a table fails as a whole: when any column has no rule for the
// destination dialect no Mapping is returned and no rows of the table must be written.
package pipeline
