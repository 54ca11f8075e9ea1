// Package lang implements whale, a small data-oriented scripting language
// for machine setup and administration scripts.
//
// A script is a sequence of statements separated by semicolons. Every
// statement is an expression; the value of a script is the value of its last
// statement. The lexer and the recursive descent parser are hand-written and
// produce a tree of [Node] values that an [Interpreter] evaluates against a
// [Scope].
//
// # Grammar
//
// Informal EBNF, lowest precedence first:
//
//	Script     → (Stmt (';' Stmt)*)? ';'? EOF
//	Stmt       → Assign
//	Assign     → Ident ('=' | '+=' | '-=' | '*=' | '/=') Assign | Yield
//	Yield      → Method ('::' Method)*
//	Method     → Or (':' Ident Args?)*
//	Or         → And ('||' And)*
//	And        → Compare ('&&' Compare)*
//	Compare    → Sum (('==' | '!=' | '<' | '>' | '<=' | '>=') Sum)*
//	Sum        → Product (('+' | '-') Product)*
//	Product    → Unary (('*' | '/' | '%') Unary)*
//	Unary      → ('-' | '!') Unary | Postfix
//	Postfix    → Primary Args*
//	Primary    → Int | Float | String | 'true' | 'false' | 'empty'
//	           | Ident | '(' Elems? ')' | '{' Script '}'
//	Args       → '(' (Assign (',' Assign)* ','?)? ')'
//
// Identifiers may contain dots, which address nested map entries. A
// parenthesized group holding a single expression without a trailing comma
// is grouping; otherwise it is a List, or a Map when every element is a
// plain assignment.
//
// # Example
//
//	# a table of users, filtered and sorted
//	users = create_table(("name", "age"), (("bob", 31), ("amy", 27)));
//	adults = users:select_where(age > 30);
//	users:sort_by("age"):get(0)::input.name
//
//	# functions take one argument, bound to input
//	double = { input * 2 };
//	double(21)
//
//	# branches run concurrently, each on a copy of the scope
//	async("1 + 1", { sh("uname -r") })
//
// # Values
//
// A [Value] is one of Empty, Boolean, Integer, Float, String, List, Map,
// Table, Function or Time. Values are immutable: assignment, macro
// arguments and async snapshots all behave as copies.
//
// # Macros
//
// Named operations are looked up in a [Registry]. A new registry holds the
// collection and logic macros; package builtin adds the rest. A call first
// resolves a Function bound in scope, then a macro of the same name.
package lang
