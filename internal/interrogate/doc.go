// Package interrogate runs the per-node question sequence once a session
// has reached a target: PORTS, ROUTES, NODES, MHEARD per port, INFO.
//
// Steps share a Visit value and run in a fixed order chosen by data
// dependency (MHEARD needs the port table) and value (ROUTES is
// essential, INFO is garnish). A step failure is recorded and the rest
// still run: reaching a distant node costs minutes of airtime, so the
// pipeline salvages everything it can from each connection.
package interrogate
