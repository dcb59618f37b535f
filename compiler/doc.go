/*

Process of compilation

Program Text ->
	strip spaces ->
Token Stream ->
	parse and generate (front) ->
Instruction Sequence (ir) ->
	write (format) ->
IR Text

IR Text ->
	read (format) ->
Instruction Sequence (ir) ->
	eliminate dead code (opt) ->
Pruned Sequence ->
	write (format) ->
IR Text

*/
package compiler
