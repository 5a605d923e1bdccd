/*
Package events is a small in-memory pub/sub broker used to decouple
task-lifecycle notifications from whatever logs or streams them.

The engine publishes EventTaskAdmitted, EventTaskStopped, and
EventTaskCompleted as tasks move through the registry; the controller
publishes EventWorkerSpawned and EventWorkerRemoved as it provisions
and tears down worker pods. A Broker buffers published events on an
internal channel and fans each one out to every Subscribe()'d channel;
a full subscriber buffer drops the event rather than blocking the
publisher.

Start the broker once at process startup and Stop it during shutdown:

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)
	for ev := range sub {
		log.Info(string(ev.Type))
	}
*/
package events
