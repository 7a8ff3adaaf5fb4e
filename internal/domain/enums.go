package domain

// VehicleStatus is the closed set of states a Vehicle can occupy.
type VehicleStatus string

const (
	VehicleIdle          VehicleStatus = "idle"
	VehicleEnRouteEmpty  VehicleStatus = "en_route_empty"
	VehicleEnRouteLoaded VehicleStatus = "en_route_loaded"
	VehicleAtPickup      VehicleStatus = "at_pickup"
	VehicleAtDelivery    VehicleStatus = "at_delivery"
	VehicleMaintenance   VehicleStatus = "maintenance"
	VehicleOffline       VehicleStatus = "offline"
)

// LoadStatus is the closed set of states a Load can occupy. Transitions are
// monotone along available -> matched -> in_transit -> delivered, with
// cancelled/expired reachable only from available or matched.
type LoadStatus string

const (
	LoadAvailable  LoadStatus = "available"
	LoadMatched    LoadStatus = "matched"
	LoadInTransit  LoadStatus = "in_transit"
	LoadDelivered  LoadStatus = "delivered"
	LoadCancelled  LoadStatus = "cancelled"
	LoadExpired    LoadStatus = "expired"
)

// TripPhase is the closed set of phases a Trip passes through, in order.
type TripPhase string

const (
	TripPlanning       TripPhase = "planning"
	TripEnRouteToPickup TripPhase = "en_route_to_pickup"
	TripLoading        TripPhase = "loading"
	TripInTransit      TripPhase = "in_transit"
	TripUnloading      TripPhase = "unloading"
	TripCompleted      TripPhase = "completed"
	TripCancelled      TripPhase = "cancelled"
)

// EventType is the closed enumeration of event payload shapes the store
// will accept. See the Payload field of Event for the tagged union.
type EventType string

const (
	EventVehiclePositionUpdate EventType = "vehicle_position_update"
	EventLoadPosted            EventType = "load_posted"
	EventLoadMatched           EventType = "load_matched"
	EventTripStarted           EventType = "trip_started"
	EventTripCompleted         EventType = "trip_completed"
	EventTrafficAlert          EventType = "traffic_alert"
	EventDeliveryDelay         EventType = "delivery_delay"
	EventFuelLow               EventType = "fuel_low"
	EventMaintenanceRequired   EventType = "maintenance_required"
	EventNewLoadPosted         EventType = "new_load_posted"
	EventDriverRestRequired    EventType = "driver_rest_required"
	EventLoadCancelled         EventType = "load_cancelled"
	EventInternalError         EventType = "internal_error"
)

// AdapterDecision is the closed menu the Adapter agent chooses among for an
// in-flight trip.
type AdapterDecision string

const (
	DecisionContinue     AdapterDecision = "CONTINUE"
	DecisionAdjustRoute  AdapterDecision = "ADJUST_ROUTE"
	DecisionFollowUpLoad AdapterDecision = "FOLLOW_UP_LOAD"
)

// OnTimeStatus summarizes a trip's predicted delivery outcome.
type OnTimeStatus string

const (
	OnTime  OnTimeStatus = "on-time"
	Delayed OnTimeStatus = "delayed"
)

// AdvisoryKind is the closed priority-ordered set of recommendations the
// Predictor can attach to a trip.
type AdvisoryKind string

const (
	AdvisoryRefuel    AdvisoryKind = "refuel"
	AdvisoryRest      AdvisoryKind = "rest"
	AdvisoryDelay     AdvisoryKind = "delay-notification"
	AdvisoryOnTrack   AdvisoryKind = "on-track"
)

// TriggerKind is the closed set of internal markers Observer can raise to
// make the Dispatch Loop run Matcher or Adapter out of schedule.
type TriggerKind string

const (
	TriggerIdleTimeout           TriggerKind = "idle_timeout"
	TriggerNearDelivery          TriggerKind = "near_delivery"
	TriggerHighPriorityLoadPosted TriggerKind = "high_priority_load_posted"
	TriggerTrafficEvent          TriggerKind = "traffic_event"
)
