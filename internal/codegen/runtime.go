package codegen

// runtimeDecls is the exported symbol list from spec §6 (minus the internal
// free_val_if_ok) plus val_array_get/val_array_set. Every name
// here is satisfied by the external runtime object at link time; codegen
// only ever calls them, never redefines them.
var runtimeDecls = []string{
	"%val_t = type opaque",
	"",
	"declare " + valTy + " @new_null_val()",
	"declare " + valTy + " @new_bool_val(i1)",
	"declare " + valTy + " @new_int_val(i64)",
	"declare " + valTy + " @new_float_val(double)",
	"declare " + valTy + " @new_str_val(i8*)",
	"declare " + valTy + " @new_array_val(i64)",
	"declare " + valTy + " @new_object_val()",
	"",
	"declare void @link_val(" + valTy + ")",
	"declare void @unlink_val(" + valTy + ")",
	"",
	"declare " + valTy + " @val_op_add(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_sub(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_mul(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_div(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_mod(" + valTy + ", " + valTy + ")",
	"",
	"declare " + valTy + " @val_op_eq(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_neq(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_seq(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_sneq(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_lt(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_gt(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_lte(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_gte(" + valTy + ", " + valTy + ")",
	"",
	"declare " + valTy + " @val_op_and(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_or(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_op_not(" + valTy + ")",
	"",
	"declare " + valTy + " @val_op_pos(" + valTy + ")",
	"declare " + valTy + " @val_op_neg(" + valTy + ")",
	"",
	"declare void @val_array_push(" + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_array_get(" + valTy + ", " + valTy + ")",
	"declare void @val_array_set(" + valTy + ", " + valTy + ", " + valTy + ")",
	"declare " + valTy + " @val_object_set(" + valTy + ", i8*, " + valTy + ")",
	"declare " + valTy + " @val_object_get(" + valTy + ", i8*)",
	"",
	"declare " + valTy + " @val_get_type(" + valTy + ")",
	"declare void @echo(" + valTy + ")",
}

func (g *Generator) emitRuntimeDecls() {
	for _, line := range runtimeDecls {
		g.globals.WriteString(line)
		g.globals.WriteString("\n")
	}
	g.globals.WriteString("\n")
}
