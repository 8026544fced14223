// Package condition builds SQL predicate fragments at runtime.
//
// A Condition renders one fragment such as env_id = '0000000003' or
// record_id in (1,2). Conditions are composed into a Chain with And and Or;
// rendering the chain joins the fragments in insertion order with no implicit
// parentheses, so SQL operator precedence applies.
//
// A sub-query condition may find no values. Such a fragment is empty: when
// it is AND-linked the whole chain can never match and Render reports
// Result.NoMatch instead of SQL; when it is OR-linked it is skipped.
//
// Chains can also be built from tabular input (FromTable) where each row is
// either [column, value] or [column, operator, value].
package condition
