// Package graph defines the node graph: typed sockets owned by nodes,
// directed connections between them, and the Graph container that owns
// everything by id and enforces the consistency invariants.
//
// The graph is an arena: connections reference sockets by (node, socket)
// id pairs, and the Graph keeps an id-indexed back-reference map from each
// socket to its attached connections. Nothing holds live pointers across
// entities.
package graph
