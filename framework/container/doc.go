// Package container provides the singleton bean registry and its
// reflective dependency injection.
//
// # Overview
//
// Every bean is a process-wide singleton registered under several lookup
// keys. Registration is first-wins: once a key is present, later inserts
// under the same key are ignored without error.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(stereotype.Default)
//  2. Providers: registry.Register(&MyProvider{})   // pre-built instances claim keys first
//  3. Instantiate: c.Instantiate(ids)               // ids from scanner.Scan
//  4. Wire: c.Wire()
//  5. Build routes, then c.Freeze()                 // read-only from here on
//  6. Serve requests
//
// # Keys
//
// For each constructed Component or Controller, in this order:
//
//	Implements[MathService]()     → "mathService"
//	embedded Base (not a bean)    → "Base"       (Components only)
//	the type itself               → "mathController"
//
// # Injection
//
//	type MathController struct {
//	    mathService MathService `inject:""`   // resolved by key "mathService"
//	}
//
// Unexported fields are assigned too. Constructor and setter injection
// points are declared on the descriptor:
//
//	stereotype.Component[OrderService](
//	    stereotype.InjectConstructor(NewOrderService), // func(Repo) *OrderService
//	    stereotype.InjectSetter("SetClock"),           // func(*OrderService) SetClock(Clock)
//	)
//
// # Resolving
//
//	raw := c.Make("mathService")
//	svc := container.Resolve[math.MathService](c, "mathService")
//	svc, ok := container.TryResolve[math.MathService](c, "mathService")
package container
