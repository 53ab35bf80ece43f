// Package adtree provides:
//
// - A type-descriptor schema model (primitives, vectors, enums/tagged unions, Option sugar)
// - An immutable, editable tree representation addressed by integer paths
// - Persistent updates by path copying: every edit returns a new root and shares
// all untouched subtrees with the previous one
// - A stable error model via Issues (path, code, message)
//
// Design policy:
// - Keep the schema and tree model in the root package; the algebraic JSON codec
// lives under codec/, the document collection under forest/, persistence under store/.
// - The Registry is built once at startup, sealed, and passed explicitly to every
// operation that needs to resolve a type by name.
// - Core operations never perform I/O and never mutate a node that has been handed out.
//
// Typical usage:
//
//	reg := adtree.NewRegistry()
//	_ = reg.Register(adtree.Primitive("String", adtree.Text))
//	_ = reg.Register(adtree.Enum("Tree",
//	    adtree.Variant("Leaf", adtree.Ref("String")),
//	    adtree.Variant("Branch", adtree.Inline(adtree.Vector(adtree.Ref("Tree")))),
//	))
//	reg.Seal()
//
//	root, _ := reg.DefaultOf(adtree.Ref("Tree"))
//	root, _ = adtree.SetValue(root, adtree.Path{0}, "hello")
//	v, _ := codec.Concentrate(reg, root, adtree.Ref("Tree"))
//	_ = v // {"Leaf": "hello"}
package adtree
