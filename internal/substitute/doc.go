// Package substitute applies literal value replacements and spark_conf
// rules to a bundle document.
//
// Value replacements touch scalar values only, never mapping keys, and run
// in declaration order. Spark conf rules run afterwards so the values they
// insert are not themselves rewritten.
package substitute
