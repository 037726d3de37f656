// Package stereotype holds the markers the framework reads at startup.
//
// Go has no runtime annotations, so a type's markers are declared once, in
// an init function, by registering a Descriptor with a Catalog:
//
//	func init() {
//	    stereotype.Component[mathServiceImpl](stereotype.Implements[MathService]())
//
//	    stereotype.Controller[MathController](
//	        stereotype.RequestMapping("/alexlee"),
//	        stereotype.Handle("/add", "Add", "a", "b"),
//	    )
//	}
//
// Marker summary:
//
//	Component          → type is eligible for container instantiation
//	Controller         → instantiation and routing, no ancestor registration
//	RequestMapping(p)  → type-level base path
//	Handle(p, m, ...)  → method-level path fragment plus named parameters
//	`inject:""` tag    → field injection point
//	InjectConstructor  → constructor injection point (one parameter)
//	InjectSetter       → setter injection point (one parameter)
//
// Descriptors are read-only once registered. The package-level helpers write
// to Default; tests build their own Catalog with NewCatalog and Add.
package stereotype
