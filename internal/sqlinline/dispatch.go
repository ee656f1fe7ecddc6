package sqlinline

const QEnsureDispatchRequests = `--sql 66a36e48-9649-4b65-9e73-7732398b0c0e
create table if not exists dispatch_requests (
    id bigserial primary key,
    request_id text not null,
    operation text not null,
    group_id text not null,
    user_id text not null,
    model_id text not null default '',
    locale text not null default '',
    country text not null default '',
    units integer not null,
    submitted integer not null,
    failed integer not null,
    skipped boolean not null default false,
    object_names jsonb not null default '[]'::jsonb,
    created_at timestamptz not null default now()
);
create index if not exists dispatch_requests_request_id_idx on dispatch_requests (request_id);
`

const QInsertDispatchRequest = `--sql 90ab9d2c-ec05-447f-bccc-aef17d46c2ac
insert into dispatch_requests
    (request_id, operation, group_id, user_id, model_id, locale, country, units, submitted, failed, skipped, object_names)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
returning id;
`
