/*
Package ports defines the interfaces between the arbor planner and the outside world.

These interfaces decouple planning and plan execution from concrete storage,
locking and transport, so the same executor runs against memory or Redis and
the same HTTP/MCP adapters serve any planner.

# Key Interfaces

  - Planner: plans a named goal; implemented by arbor.Planner.
  - PlanStore: persists submitted plans and their execution cursor per agent.
  - StepDispatcher: applies a planned step to the real world.
  - DistributedLocker: serialises execution for an agent across replicas.
*/
package ports
