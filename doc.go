/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package mbx exposes Go struct types as management beans.
//
// A managed type marks its attributes with struct tags and declares its
// operations and notifications through descriptor.For:
//
//	type Cache struct {
//		size int    `mbx:"size" description:"{cache.size.description}"`
//		mode string `mbx:""`
//	}
//
//	func (c *Cache) Purge() { ... }
//
//	name, _, err := mbx.ExposeType[Cache](
//		descriptor.WithScope(apis.ScopeNormal),
//		descriptor.WithOperation("purge", "Purge", "drops every entry"),
//	)
//
// The resulting mbean.Adapter resolves its backing *Cache from the bean
// registry on first use and reads and writes the tagged fields directly.
//
// # Design
//
// The package holds a read-mostly global snapshot:
//
//   - Config: default domain and tag names (see package config).
//
//   - Properties: the apis.PropertySource used to resolve "{key}"
//     description placeholders.
//
//   - Beans: the apis.BeanRegistry backing instances come from. The
//     default is an empty registry.Registry.
//
//   - Server: the server.Server exposed mbeans are registered with.
//
//   - Resolver: derives object names. The default chain asks apis.Namer
//     first and falls back to "<domain>:type=MBeans,name=<pkg>.<Type>".
//
//   - Logger: handed to every adapter built by Expose.
//
// Readers load the snapshot atomically and never lock. Writers (SetConfig,
// SetProperties, SetBeans, SetServer, SetResolver, SetLogger, SetAll) take
// a short build mutex, copy the snapshot, and publish the copy. Adapters
// capture the snapshot they were built from; later writes do not affect
// them.
//
// Tests use SetAll to start from a clean, deterministic snapshot.
//
// # Scope
//
// mbx is not a dependency-injection container. Registries only look up
// instances; they never inject or autowire them.
package mbx
