package model

import "fmt"

// Collection path helpers, per §6's stable collection paths. Every path
// this module touches is built through these, so the wire layout lives in
// exactly one place.

// CeremoniesCollection is the root ceremonies collection.
const CeremoniesCollection = "ceremonies"

// CircuitsCollection returns the circuits sub-collection path for ceremonyID.
func CircuitsCollection(ceremonyID string) string {
	return fmt.Sprintf("%s/%s/circuits", CeremoniesCollection, ceremonyID)
}

// ParticipantsCollection returns the participants sub-collection path for
// ceremonyID.
func ParticipantsCollection(ceremonyID string) string {
	return fmt.Sprintf("%s/%s/participants", CeremoniesCollection, ceremonyID)
}

// TimeoutsCollection returns the timeouts sub-collection path for a given
// ceremony/participant pair.
func TimeoutsCollection(ceremonyID, participantID string) string {
	return fmt.Sprintf("%s/%s/timeouts", ParticipantsCollection(ceremonyID), participantID)
}

// CeremonyPath returns the document path for a ceremony.
func CeremonyPath(ceremonyID string) string {
	return fmt.Sprintf("%s/%s", CeremoniesCollection, ceremonyID)
}

// CircuitPath returns the document path for a circuit.
func CircuitPath(ceremonyID, circuitID string) string {
	return fmt.Sprintf("%s/%s", CircuitsCollection(ceremonyID), circuitID)
}

// ParticipantPath returns the document path for a participant.
func ParticipantPath(ceremonyID, participantID string) string {
	return fmt.Sprintf("%s/%s", ParticipantsCollection(ceremonyID), participantID)
}
