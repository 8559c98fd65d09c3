/*
Package session serialises access to the plan each agent is executing.

A Manager wraps a ports.PlanStore with a reference-counted in-process lock per
agent and, optionally, a ports.DistributedLocker so that several executor
replicas never run the same agent's plan at once.
*/
package session
